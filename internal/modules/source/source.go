package source

import (
	"context"
	"strings"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

// Adapter produces normalized news items for one resource URL. An adapter
// must not return an item whose body text was previously returned for the
// same ledger key.
type Adapter interface {
	FetchNew(ctx context.Context, resourceURL string, ledgerKey string) ([]itemDomain.NewsItem, error)
}

// IsRSS classifies a resource URL as an RSS feed by its shape.
func IsRSS(url string) bool {
	return strings.Contains(url, "rss") || strings.Contains(url, "feed")
}

// IsChannel classifies a resource URL as a Telegram channel link.
func IsChannel(url string) bool {
	return strings.Contains(url, "t.me")
}

// ChannelKey extracts the channel username from a t.me link.
func ChannelKey(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "t.me/")
	url = strings.TrimPrefix(url, "@")
	return strings.TrimSuffix(url, "/")
}
