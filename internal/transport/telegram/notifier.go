package telegram

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	"github.com/samber/oops"

	moderationService "github.com/amrahli/newsgate/internal/modules/moderation/service"
)

// Notifier delivers moderation requests to moderation chats, attaching the
// decision controls as an inline keyboard.
type Notifier struct {
	b *bot.Bot
}

// NewNotifier creates a notifier bound to the bot.
func NewNotifier(b *bot.Bot) *Notifier {
	return &Notifier{b: b}
}

// Notify sends the moderation request. Items with a staged image go out as a
// photo with the request as caption.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text string, imagePath string, actions []moderationService.Action) error {
	markup := actionsMarkup(actions)

	if imagePath != "" {
		f, err := os.Open(imagePath)
		if err == nil {
			defer f.Close()
			_, err = n.b.SendPhoto(ctx, &bot.SendPhotoParams{
				ChatID:      chatID,
				Photo:       &models.InputFileUpload{Filename: filepath.Base(imagePath), Data: f},
				Caption:     text,
				ReplyMarkup: markup,
			})
			if err != nil {
				return oops.With("chat_id", chatID, "context", "failed to send moderation photo").Wrap(err)
			}
			return nil
		}
		// Fall through to a plain message when the staged image is gone.
	}

	_, err := n.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return oops.With("chat_id", chatID, "context", "failed to send moderation message").Wrap(err)
	}
	return nil
}

func actionsMarkup(actions []moderationService.Action) models.InlineKeyboardMarkup {
	return models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			lo.Map(actions, func(a moderationService.Action, _ int) models.InlineKeyboardButton {
				return models.InlineKeyboardButton{Text: a.Label, CallbackData: a.Data}
			}),
		},
	}
}
