package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/oops"

	"github.com/amrahli/newsgate/internal/modules/item/allocator"
	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

var htmlTags = regexp.MustCompile(`<[^>]*>`)

// RSSAdapter fetches the newest entry of an RSS/Atom feed, normalizes it to
// a NewsItem and stages any entry image on local disk.
type RSSAdapter struct {
	parser     *gofeed.Parser
	ids        *allocator.Allocator
	ledgers    *Ledgers
	imagesPath string
	httpClient *http.Client
}

// NewRSSAdapter creates an RSS adapter staging images under imagesPath.
func NewRSSAdapter(ids *allocator.Allocator, ledgers *Ledgers, imagesPath string) (*RSSAdapter, error) {
	if err := os.MkdirAll(imagesPath, 0755); err != nil {
		return nil, oops.With("images_path", imagesPath, "context", "failed to create images directory").Wrap(err)
	}
	return &RSSAdapter{
		parser:     gofeed.NewParser(),
		ids:        ids,
		ledgers:    ledgers,
		imagesPath: imagesPath,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// FetchNew parses the feed and returns its newest entry, unless the entry's
// body text was already delivered for this ledger key.
func (a *RSSAdapter) FetchNew(ctx context.Context, resourceURL string, ledgerKey string) ([]itemDomain.NewsItem, error) {
	feed, err := a.parser.ParseURLWithContext(resourceURL, ctx)
	if err != nil {
		return nil, oops.With("resource_url", resourceURL, "context", "failed to parse feed").Wrap(err)
	}
	if len(feed.Items) == 0 {
		return nil, nil
	}

	ledger := a.ledgers.For("rss_ledger_" + ledgerKey)

	// Only the newest entry per cycle; older entries were either delivered
	// on previous cycles or predate the linkage.
	entry := feed.Items[0]
	text := entryText(entry)
	if text == "" {
		return nil, nil
	}

	seen, err := ledger.Seen(text)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, nil
	}

	id, err := a.ids.Next()
	if err != nil {
		return nil, err
	}

	news := itemDomain.NewsItem{
		ID:         id,
		Kind:       itemDomain.ItemKindRss,
		Text:       text,
		SourceURL:  resourceURL,
		SourceName: feed.Title,
	}

	if imgURL := entryImage(entry); imgURL != "" {
		path, err := a.saveImage(ctx, imgURL, id)
		if err != nil {
			slog.Warn("Failed to stage feed image", "image_url", imgURL, "error", err)
		} else {
			news.ImagePath = path
		}
	}

	if err := ledger.Record(text); err != nil {
		return nil, err
	}

	return []itemDomain.NewsItem{news}, nil
}

// entryText builds the item body from title and description, stripped of
// markup and clamped to the item contract.
func entryText(entry *gofeed.Item) string {
	body := entry.Description
	if body == "" {
		body = entry.Content
	}
	body = htmlTags.ReplaceAllString(body, " ")

	text := strings.TrimSpace(entry.Title)
	if body != "" {
		text = text + "\n\n" + body
	}
	text = strings.Join(strings.Fields(text), " ")
	return itemDomain.ClampText(text)
}

func entryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func (a *RSSAdapter) saveImage(ctx context.Context, imgURL string, itemID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return "", oops.With("image_url", imgURL).Wrap(err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", oops.With("image_url", imgURL).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", oops.With("image_url", imgURL, "status", resp.StatusCode).Errorf("unexpected status fetching image")
	}

	ext := filepath.Ext(strings.SplitN(imgURL, "?", 2)[0])
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(a.imagesPath, itemID+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", oops.With("image_path", path).Wrap(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", oops.With("image_path", path).Wrap(err)
	}
	return path, nil
}
