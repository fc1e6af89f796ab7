package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/oops"

	errs "github.com/amrahli/newsgate/internal/shared/errors"
)

// AdminVerifier checks publication channels against the live Telegram API:
// the channel must exist and the account must be one of its administrators.
type AdminVerifier struct {
	b *bot.Bot
}

// NewAdminVerifier creates a verifier bound to the bot.
func NewAdminVerifier(b *bot.Bot) *AdminVerifier {
	return &AdminVerifier{b: b}
}

// VerifyAdmin implements ChannelVerifier.
func (v *AdminVerifier) VerifyAdmin(ctx context.Context, channel string) error {
	chatID := channelChatID(channel)

	chat, err := v.b.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		return oops.With("channel", channel, "context", "failed to resolve channel").Wrap(err)
	}

	me, err := v.b.GetMe(ctx)
	if err != nil {
		return oops.With("context", "failed to resolve own account").Wrap(err)
	}

	member, err := v.b.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chat.ID,
		UserID: me.ID,
	})
	if err != nil {
		return oops.With("channel", channel, "context", "failed to check channel membership").Wrap(err)
	}

	switch member.Type {
	case models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return nil
	default:
		return errs.ErrNotChannelAdmin
	}
}
