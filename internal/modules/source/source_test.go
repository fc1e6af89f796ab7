package source

import (
	"context"
	"testing"

	"github.com/amrahli/newsgate/internal/modules/item/allocator"
	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

func TestChannelKey(t *testing.T) {
	cases := map[string]string{
		"https://t.me/example":  "example",
		"http://t.me/example/":  "example",
		"t.me/example":          "example",
		"https://t.me/@example": "example",
	}
	for url, want := range cases {
		if got := ChannelKey(url); got != want {
			t.Errorf("ChannelKey(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestURLClassification(t *testing.T) {
	if !IsRSS("https://example.com/rss.xml") || !IsRSS("https://example.com/feed") {
		t.Error("feed URLs not classified as RSS")
	}
	if IsRSS("https://t.me/example") {
		t.Error("channel URL classified as RSS")
	}
	if !IsChannel("https://t.me/example") {
		t.Error("t.me URL not classified as channel")
	}
}

func TestLedgerDedup(t *testing.T) {
	ledgers, err := NewLedgers(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	l := ledgers.For("rss_ledger_Tech")

	seen, err := l.Seen("Breaking news")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("fresh ledger reports text as seen")
	}

	if err := l.Record("Breaking news"); err != nil {
		t.Fatal(err)
	}
	seen, err = l.Seen("Breaking news")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("recorded text not reported as seen")
	}
}

func newChannelAdapter(t *testing.T) *ChannelAdapter {
	t.Helper()
	dir := t.TempDir()
	ids, err := allocator.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ledgers, err := NewLedgers(dir)
	if err != nil {
		t.Fatal(err)
	}
	return NewChannelAdapter(ids, ledgers)
}

func TestChannelAdapterDrainsInbox(t *testing.T) {
	a := newChannelAdapter(t)

	a.Ingest("example", ChannelPost{Text: "first post", SourceName: "Example"})
	a.Ingest("example", ChannelPost{Text: "second post", SourceName: "Example"})
	a.Ingest("other", ChannelPost{Text: "elsewhere", SourceName: "Other"})

	items, err := a.FetchNew(context.Background(), "https://t.me/example", "Tech")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("FetchNew returned %d items, want 2", len(items))
	}
	if items[0].Kind != itemDomain.ItemKindChannel {
		t.Errorf("item kind = %v", items[0].Kind)
	}
	if items[0].ID == items[1].ID {
		t.Error("items share an ID")
	}

	// Inbox is drained; the other channel's post stays queued.
	items, err = a.FetchNew(context.Background(), "https://t.me/example", "Tech")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("second FetchNew returned %d items, want 0", len(items))
	}
}

func TestChannelAdapterDedupsByText(t *testing.T) {
	a := newChannelAdapter(t)

	a.Ingest("example", ChannelPost{Text: "repeated", SourceName: "Example"})
	if _, err := a.FetchNew(context.Background(), "https://t.me/example", "Tech"); err != nil {
		t.Fatal(err)
	}

	a.Ingest("example", ChannelPost{Text: "repeated", SourceName: "Example"})
	items, err := a.FetchNew(context.Background(), "https://t.me/example", "Tech")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("duplicate text re-delivered: %+v", items)
	}
}

func TestChannelAdapterDropsEmptyText(t *testing.T) {
	a := newChannelAdapter(t)

	a.Ingest("example", ChannelPost{Text: "   ", SourceName: "Example"})
	items, err := a.FetchNew(context.Background(), "https://t.me/example", "Tech")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("blank post delivered: %+v", items)
	}
}
