package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/lo"
	"github.com/samber/oops"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
	linkageDomain "github.com/amrahli/newsgate/internal/modules/linkage/domain"
	"github.com/amrahli/newsgate/internal/modules/linkage/repository"
	"github.com/amrahli/newsgate/internal/shared/errors"
)

// Moderation decision actions carried in callback data as
// "<action>:<item_id>:<linkage_name>".
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

const (
	notifyExcerptLen  = 500
	outcomeExcerptLen = 300
)

// Action is one moderation control attached to a notification.
type Action struct {
	Label string
	Data  string
}

// Outcome describes a processed decision so the transport can rewrite the
// moderation message.
type Outcome struct {
	Accepted bool
	Excerpt  string
	Source   string
}

// Notifier delivers a moderation request to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string, imagePath string, actions []Action) error
}

// Publisher posts approved content to a publication channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, text string, imagePath string) error
}

// Restyler rewrites text per an instruction, falling back to the original on
// failure.
type Restyler interface {
	Restyle(ctx context.Context, text string, instruction string) string
}

// Service is the moderation queue engine: it owns enqueueing candidate items
// into a linkage's pending queue and processing operator decisions.
type Service struct {
	repo      repository.Repository
	notifier  Notifier
	publisher Publisher
	restyler  Restyler
}

// New creates a moderation service
func New(repo repository.Repository, notifier Notifier, publisher Publisher, restyler Restyler) *Service {
	return &Service{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		restyler:  restyler,
	}
}

// Enqueue appends the item to the linkage's pending queue unless an entry
// with the same ID is already present, then notifies the moderation chat.
// Persistence happens before notification: a failed notification leaves the
// item queued for manual inspection, and the ID dedup guarantees it is never
// announced twice.
func (s *Service) Enqueue(ctx context.Context, it itemDomain.NewsItem, linkageName string) error {
	var (
		chatID    int64
		duplicate bool
	)

	err := s.repo.Update(func(doc *linkageDomain.Document) error {
		l, ok := doc.Linkages[linkageName]
		if !ok {
			return errors.ErrLinkageNotFound
		}

		if lo.ContainsBy(l.PendingItems, func(p itemDomain.NewsItem) bool { return p.ID == it.ID }) {
			duplicate = true
			return nil
		}

		l.PendingItems = append(l.PendingItems, it)
		chatID = l.ModerationChatID
		return nil
	})
	if err != nil {
		return err
	}
	if duplicate {
		return nil
	}

	text := fmt.Sprintf("📰 New item for moderation:\n\n%s", itemDomain.Excerpt(it.Text, notifyExcerptLen))
	actions := []Action{
		{Label: "✅ Accept", Data: fmt.Sprintf("%s:%s:%s", ActionAccept, it.ID, linkageName)},
		{Label: "❌ Reject", Data: fmt.Sprintf("%s:%s:%s", ActionReject, it.ID, linkageName)},
	}

	if err := s.notifier.Notify(ctx, chatID, text, it.ImagePath, actions); err != nil {
		slog.Error("Failed to send moderation notification, item stays queued",
			"item_id", it.ID, "linkage", linkageName, "error", err)
	}

	return nil
}

// Resolve processes an operator decision. The resolving chat must be the
// linkage's moderation chat. On accept, publication runs before the item is
// removed from the queue, so a crash in between can publish twice after a
// restart; this is an accepted at-least-once trade-off. The staged image is
// deleted after either decision.
func (s *Service) Resolve(ctx context.Context, action string, itemID string, linkageName string, chatID int64) (*Outcome, error) {
	var outcome *Outcome

	err := s.repo.Update(func(doc *linkageDomain.Document) error {
		l, ok := doc.Linkages[linkageName]
		if !ok {
			return errors.ErrLinkageNotFound
		}
		if l.ModerationChatID != chatID {
			return errors.ErrUnauthorizedModerator
		}

		idx := lo.IndexOf(lo.Map(l.PendingItems, func(p itemDomain.NewsItem, _ int) string { return p.ID }), itemID)
		if idx < 0 {
			return errors.ErrItemNotFound
		}
		it := l.PendingItems[idx]

		if action == ActionAccept {
			if err := s.publish(ctx, l, it); err != nil {
				slog.Error("Publication failed, item is dropped from the queue",
					"item_id", it.ID, "linkage", linkageName, "error", err)
			}
		}

		s.removeImage(it)

		l.PendingItems = append(l.PendingItems[:idx], l.PendingItems[idx+1:]...)

		outcome = &Outcome{
			Accepted: action == ActionAccept,
			Excerpt:  itemDomain.Excerpt(it.Text, outcomeExcerptLen),
			Source:   it.SourceURL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Moderation decision processed", "item_id", itemID, "linkage", linkageName, "action", action)
	return outcome, nil
}

// publish restyles the item text with the linkage's instruction and sends it
// to the publication channel.
func (s *Service) publish(ctx context.Context, l *linkageDomain.Linkage, it itemDomain.NewsItem) error {
	text := s.restyler.Restyle(ctx, it.Text, l.Prompt)

	if err := s.publisher.Publish(ctx, l.PublicationChannel, text, it.ImagePath); err != nil {
		return oops.With("item_id", it.ID, "channel", l.PublicationChannel, "context", "failed to publish item").Wrap(err)
	}
	return nil
}

// removeImage deletes the staged image file to bound local disk usage.
func (s *Service) removeImage(it itemDomain.NewsItem) {
	if it.ImagePath == "" {
		return
	}
	if err := os.Remove(it.ImagePath); err != nil && !os.IsNotExist(err) {
		slog.Error("Failed to delete staged image", "image_path", it.ImagePath, "error", err)
	}
}
