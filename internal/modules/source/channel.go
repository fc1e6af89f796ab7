package source

import (
	"context"
	"strings"
	"sync"

	"github.com/amrahli/newsgate/internal/modules/item/allocator"
	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

// ChannelPost is a raw channel message pushed in by the transport layer. The
// bot API only delivers channel posts as updates, so posts accumulate in a
// per-channel inbox until the next poll cycle drains them.
type ChannelPost struct {
	Text       string
	ImagePath  string
	SourceName string
}

// ChannelAdapter turns inboxed channel posts into NewsItems.
type ChannelAdapter struct {
	ids     *allocator.Allocator
	ledgers *Ledgers
	mu      sync.Mutex
	inbox   map[string][]ChannelPost
}

// NewChannelAdapter creates a channel adapter.
func NewChannelAdapter(ids *allocator.Allocator, ledgers *Ledgers) *ChannelAdapter {
	return &ChannelAdapter{
		ids:     ids,
		ledgers: ledgers,
		inbox:   make(map[string][]ChannelPost),
	}
}

// Ingest queues a post under the channel's username.
func (a *ChannelAdapter) Ingest(channel string, post ChannelPost) {
	post.Text = itemDomain.ClampText(strings.TrimSpace(strings.ReplaceAll(post.Text, "\n", " ")))
	if post.Text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inbox[channel] = append(a.inbox[channel], post)
}

// FetchNew drains the inbox for the channel behind resourceURL, deduplicating
// by body text against the per-linkage ledger.
func (a *ChannelAdapter) FetchNew(ctx context.Context, resourceURL string, ledgerKey string) ([]itemDomain.NewsItem, error) {
	channel := ChannelKey(resourceURL)

	a.mu.Lock()
	posts := a.inbox[channel]
	delete(a.inbox, channel)
	a.mu.Unlock()

	if len(posts) == 0 {
		return nil, nil
	}

	ledger := a.ledgers.For("tg_ledger_" + ledgerKey)

	var items []itemDomain.NewsItem
	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		seen, err := ledger.Seen(post.Text)
		if err != nil {
			return items, err
		}
		if seen {
			continue
		}

		id, err := a.ids.Next()
		if err != nil {
			return items, err
		}

		items = append(items, itemDomain.NewsItem{
			ID:         id,
			Kind:       itemDomain.ItemKindChannel,
			Text:       post.Text,
			ImagePath:  post.ImagePath,
			SourceURL:  resourceURL,
			SourceName: post.SourceName,
		})

		if err := ledger.Record(post.Text); err != nil {
			return items, err
		}
	}

	return items, nil
}
