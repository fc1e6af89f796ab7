package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
	linkageDomain "github.com/amrahli/newsgate/internal/modules/linkage/domain"
	linkageRepo "github.com/amrahli/newsgate/internal/modules/linkage/repository"
	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
)

type fakeAdapter struct {
	items []itemDomain.NewsItem
	err   error
	calls []string
}

func (f *fakeAdapter) FetchNew(_ context.Context, resourceURL string, _ string) ([]itemDomain.NewsItem, error) {
	f.calls = append(f.calls, resourceURL)
	return f.items, f.err
}

type fakeQueue struct {
	enqueued []struct {
		Item    itemDomain.NewsItem
		Linkage string
	}
	err error
}

func (f *fakeQueue) Enqueue(_ context.Context, it itemDomain.NewsItem, linkageName string) error {
	f.enqueued = append(f.enqueued, struct {
		Item    itemDomain.NewsItem
		Linkage string
	}{it, linkageName})
	return f.err
}

func newLinkageService(t *testing.T) *linkageService.Service {
	t.Helper()
	repo, err := linkageRepo.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return linkageService.New(repo)
}

func TestCycleRoutesResourcesByShape(t *testing.T) {
	linkages := newLinkageService(t)
	err := linkages.Create("Tech", []linkageDomain.Resource{
		{URL: "https://example.com/rss.xml"},
		{URL: "https://t.me/example"},
	}, 111, "@pub")
	if err != nil {
		t.Fatal(err)
	}

	rss := &fakeAdapter{items: []itemDomain.NewsItem{{ID: "1", Text: "from rss"}}}
	channel := &fakeAdapter{items: []itemDomain.NewsItem{{ID: "2", Text: "from channel"}}}
	queue := &fakeQueue{}

	p := New(linkages, rss, channel, queue, time.Second)
	p.Cycle(context.Background())

	if len(rss.calls) != 1 || rss.calls[0] != "https://example.com/rss.xml" {
		t.Errorf("rss adapter calls = %v", rss.calls)
	}
	if len(channel.calls) != 1 || channel.calls[0] != "https://t.me/example" {
		t.Errorf("channel adapter calls = %v", channel.calls)
	}
	if len(queue.enqueued) != 2 {
		t.Fatalf("enqueued %d items, want 2", len(queue.enqueued))
	}
	for _, e := range queue.enqueued {
		if e.Linkage != "Tech" {
			t.Errorf("item enqueued for %q, want Tech", e.Linkage)
		}
	}
}

func TestCycleSkipsInactiveAndUnconfigured(t *testing.T) {
	linkages := newLinkageService(t)

	if err := linkages.Create("Paused", []linkageDomain.Resource{{URL: "https://example.com/feed"}}, 1, "@a"); err != nil {
		t.Fatal(err)
	}
	if _, err := linkages.ToggleActive("Paused"); err != nil {
		t.Fatal(err)
	}

	// Active but missing the moderation chat.
	if err := linkages.Create("Halfway", []linkageDomain.Resource{{URL: "https://example.com/feed"}}, 0, "@b"); err != nil {
		t.Fatal(err)
	}

	rss := &fakeAdapter{}
	queue := &fakeQueue{}
	p := New(linkages, rss, &fakeAdapter{}, queue, time.Second)
	p.Cycle(context.Background())

	if len(rss.calls) != 0 {
		t.Errorf("adapters called for skipped linkages: %v", rss.calls)
	}
}

func TestCycleContinuesPastAdapterFailure(t *testing.T) {
	linkages := newLinkageService(t)
	err := linkages.Create("Tech", []linkageDomain.Resource{
		{URL: "https://example.com/rss.xml"},
		{URL: "https://t.me/example"},
	}, 111, "@pub")
	if err != nil {
		t.Fatal(err)
	}

	rss := &fakeAdapter{err: errors.New("feed unreachable")}
	channel := &fakeAdapter{items: []itemDomain.NewsItem{{ID: "2", Text: "from channel"}}}
	queue := &fakeQueue{}

	p := New(linkages, rss, channel, queue, time.Second)
	p.Cycle(context.Background())

	if len(queue.enqueued) != 1 || queue.enqueued[0].Item.ID != "2" {
		t.Errorf("enqueued = %+v, want only the channel item", queue.enqueued)
	}
}

func TestPollLinkage(t *testing.T) {
	linkages := newLinkageService(t)
	if err := linkages.Create("Tech", []linkageDomain.Resource{{URL: "https://example.com/feed"}}, 111, "@pub"); err != nil {
		t.Fatal(err)
	}

	rss := &fakeAdapter{items: []itemDomain.NewsItem{{ID: "1", Text: "x"}}}
	queue := &fakeQueue{}
	p := New(linkages, rss, &fakeAdapter{}, queue, time.Second)

	p.PollLinkage(context.Background(), "Tech")
	if len(queue.enqueued) != 1 {
		t.Errorf("enqueued %d items, want 1", len(queue.enqueued))
	}

	// Unknown linkage only logs.
	p.PollLinkage(context.Background(), "Nope")
}

func TestStartStopsOnContextCancel(t *testing.T) {
	linkages := newLinkageService(t)
	p := New(linkages, &fakeAdapter{}, &fakeAdapter{}, &fakeQueue{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
