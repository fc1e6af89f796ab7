package telegram

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"

	"github.com/amrahli/newsgate/internal/modules/source"
)

// Publisher posts approved items to publication channels.
type Publisher struct {
	b *bot.Bot
}

// NewPublisher creates a publisher bound to the bot.
func NewPublisher(b *bot.Bot) *Publisher {
	return &Publisher{b: b}
}

// Publish sends the item to the channel, as a photo with caption when an
// image is staged. The channel may be given as @username or a t.me link.
func (p *Publisher) Publish(ctx context.Context, channel string, text string, imagePath string) error {
	chatID := channelChatID(channel)

	if imagePath != "" {
		if f, err := os.Open(imagePath); err == nil {
			defer f.Close()
			_, err = p.b.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:  chatID,
				Photo:   &models.InputFileUpload{Filename: filepath.Base(imagePath), Data: f},
				Caption: text,
			})
			if err != nil {
				return oops.With("channel", channel, "context", "failed to publish photo").Wrap(err)
			}
			return nil
		}
	}

	_, err := p.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return oops.With("channel", channel, "context", "failed to publish message").Wrap(err)
	}
	return nil
}

// channelChatID normalizes a channel reference to the @username form the API
// accepts.
func channelChatID(channel string) string {
	return "@" + source.ChannelKey(channel)
}
