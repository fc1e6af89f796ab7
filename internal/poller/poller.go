package poller

import (
	"context"
	"log/slog"
	"time"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
	linkageDomain "github.com/amrahli/newsgate/internal/modules/linkage/domain"
	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
	"github.com/amrahli/newsgate/internal/modules/source"
)

// Enqueuer hands fetched items to the moderation queue engine.
type Enqueuer interface {
	Enqueue(ctx context.Context, it itemDomain.NewsItem, linkageName string) error
}

// Poller periodically walks all active linkages, pulls new items per resource
// and enqueues them for moderation. One linkage's failure never halts the
// cycle.
type Poller struct {
	linkages *linkageService.Service
	rss      source.Adapter
	channel  source.Adapter
	queue    Enqueuer
	interval time.Duration
}

// New creates a poller
func New(linkages *linkageService.Service, rss source.Adapter, channel source.Adapter, queue Enqueuer, interval time.Duration) *Poller {
	return &Poller{
		linkages: linkages,
		rss:      rss,
		channel:  channel,
		queue:    queue,
		interval: interval,
	}
}

// Start runs the poll loop until ctx is cancelled. Cycles do not overlap.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Cycle(ctx)
		}
	}
}

// Cycle walks every linkage once.
func (p *Poller) Cycle(ctx context.Context) {
	all, err := p.linkages.All()
	if err != nil {
		slog.Error("Failed to load linkages for poll cycle", "error", err)
		return
	}

	for name, l := range all {
		if !l.IsActive {
			continue
		}
		p.pollLinkage(ctx, name, l)
	}
}

// PollLinkage runs a single fetch-and-enqueue pass for one linkage, as done
// right after a linkage is created.
func (p *Poller) PollLinkage(ctx context.Context, name string) {
	l, err := p.linkages.Get(name)
	if err != nil {
		slog.Error("Failed to load linkage for polling", "linkage", name, "error", err)
		return
	}
	p.pollLinkage(ctx, name, l)
}

func (p *Poller) pollLinkage(ctx context.Context, name string, l *linkageDomain.Linkage) {
	if !l.Configured() {
		slog.Warn("Linkage is missing a moderation chat or publication channel, skipping", "linkage", name)
		return
	}
	if len(l.Resources) == 0 {
		slog.Warn("Linkage has no resources, skipping", "linkage", name)
		return
	}

	for _, res := range l.Resources {
		items, err := p.fetch(ctx, res.URL, name)
		if err != nil {
			slog.Error("Failed to fetch resource", "linkage", name, "resource_url", res.URL, "error", err)
			continue
		}

		for _, it := range items {
			if err := p.queue.Enqueue(ctx, it, name); err != nil {
				slog.Error("Failed to enqueue item", "linkage", name, "item_id", it.ID, "error", err)
			}
		}
	}
}

func (p *Poller) fetch(ctx context.Context, url string, ledgerKey string) ([]itemDomain.NewsItem, error) {
	switch {
	case source.IsRSS(url):
		return p.rss.FetchNew(ctx, url, ledgerKey)
	case source.IsChannel(url):
		return p.channel.FetchNew(ctx, url, ledgerKey)
	default:
		slog.Warn("Resource URL matches no adapter, skipping", "resource_url", url)
		return nil, nil
	}
}
