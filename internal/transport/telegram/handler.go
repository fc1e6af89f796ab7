package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	moderationService "github.com/amrahli/newsgate/internal/modules/moderation/service"
	"github.com/amrahli/newsgate/internal/modules/source"
	errs "github.com/amrahli/newsgate/internal/shared/errors"
)

// Handler routes Telegram updates: operator dialogue to the state machine,
// channel posts to the channel adapter inbox and moderation callbacks to the
// moderation service.
type Handler struct {
	machine    *Machine
	channels   *source.ChannelAdapter
	moderation *moderationService.Service
	imagesPath string
	httpClient *http.Client
}

// New creates a new Telegram handler
func New(machine *Machine, channels *source.ChannelAdapter, moderation *moderationService.Service, imagesPath string) *Handler {
	return &Handler{
		machine:    machine,
		channels:   channels,
		moderation: moderation,
		imagesPath: imagesPath,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HandleUpdate processes incoming updates
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, b, update.CallbackQuery)
	case update.MyChatMember != nil:
		h.handleChatMembership(ctx, b, update.MyChatMember)
	case update.ChannelPost != nil:
		h.ingestChannelPost(ctx, b, update.ChannelPost)
	case update.Message != nil && update.Message.Chat.Type == models.ChatTypePrivate:
		out := h.machine.HandleText(ctx, update.Message.From.ID, update.Message.Text)
		h.deliver(ctx, b, out)
	}
}

// handleChatMembership completes the create flow when an operator adds the
// account to a moderation group.
func (h *Handler) handleChatMembership(ctx context.Context, b *bot.Bot, upd *models.ChatMemberUpdated) {
	if upd.Chat.Type != models.ChatTypeGroup && upd.Chat.Type != models.ChatTypeSupergroup {
		return
	}
	switch upd.NewChatMember.Type {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator:
	default:
		return
	}

	out := h.machine.HandleModerationChatAdded(upd.From.ID, upd.Chat.ID)
	if len(out) > 0 {
		slog.Info("Moderation chat registered", "chat_id", upd.Chat.ID, "operator_id", upd.From.ID)
	}
	h.deliver(ctx, b, out)
}

// ingestChannelPost pushes a channel post into the adapter inbox. The poller
// picks it up on the next cycle of the linkages that list this channel.
func (h *Handler) ingestChannelPost(ctx context.Context, b *bot.Bot, msg *models.Message) {
	if msg.Chat.Username == "" {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	imagePath := ""
	if len(msg.Photo) > 0 {
		// Largest size is last.
		photo := msg.Photo[len(msg.Photo)-1]
		path, err := h.downloadPhoto(ctx, b, photo.FileID)
		if err != nil {
			slog.Error("Failed to download channel post photo", "channel", msg.Chat.Username, "error", err)
		} else {
			imagePath = path
		}
	}

	h.channels.Ingest(msg.Chat.Username, source.ChannelPost{
		Text:       text,
		ImagePath:  imagePath,
		SourceName: msg.Chat.Username,
	})
}

// downloadPhoto stages a Telegram photo under the images directory.
func (h *Handler) downloadPhoto(ctx context.Context, b *bot.Bot, fileID string) (string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return "", err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(h.imagesPath, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(h.imagesPath, filepath.Base(file.FilePath))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// handleCallback processes an accept or reject press on a moderation message.
func (h *Handler) handleCallback(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery) {
	action, itemID, linkageName, ok := parseCallbackData(cq.Data)
	if !ok {
		h.answerCallback(ctx, b, cq.ID, "Unknown action.")
		return
	}

	msg := cq.Message.Message
	if msg == nil {
		h.answerCallback(ctx, b, cq.ID, "Message is no longer accessible.")
		return
	}

	outcome, err := h.moderation.Resolve(ctx, action, itemID, linkageName, msg.Chat.ID)
	if err != nil {
		h.answerCallback(ctx, b, cq.ID, resolveErrorText(err))
		return
	}

	h.answerCallback(ctx, b, cq.ID, "")
	h.rewriteModerationMessage(ctx, b, msg, outcome)
}

func (h *Handler) answerCallback(ctx context.Context, b *bot.Bot, id string, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: id,
		Text:            text,
		ShowAlert:       text != "",
	})
	if err != nil {
		slog.Error("Failed to answer callback query", "error", err)
	}
}

// rewriteModerationMessage replaces the moderation request with the decision
// summary, removing the accept and reject controls.
func (h *Handler) rewriteModerationMessage(ctx context.Context, b *bot.Bot, msg *models.Message, outcome *moderationService.Outcome) {
	text := outcomeText(outcome)

	var err error
	if msg.Text != "" {
		_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      text,
		})
	} else {
		_, err = b.EditMessageCaption(ctx, &bot.EditMessageCaptionParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Caption:   text,
		})
	}
	if err != nil {
		slog.Error("Failed to rewrite moderation message", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}

func outcomeText(outcome *moderationService.Outcome) string {
	verdict := "❌ Rejected"
	if outcome.Accepted {
		verdict = "✅ Accepted and sent for publication"
	}

	text := fmt.Sprintf("%s:\n\n%s", verdict, outcome.Excerpt)
	if outcome.Source != "" {
		text += fmt.Sprintf("\n\nSource: %s", outcome.Source)
	}
	return text
}

func resolveErrorText(err error) string {
	switch {
	case errors.Is(err, errs.ErrItemNotFound):
		return "This item was already processed."
	case errors.Is(err, errs.ErrUnauthorizedModerator):
		return "This chat is not allowed to moderate the item."
	case errors.Is(err, errs.ErrLinkageNotFound):
		return "The linkage no longer exists."
	default:
		return "Failed to process the decision. Try again."
	}
}

func parseCallbackData(data string) (action string, itemID string, linkageName string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	action = parts[0]
	if action != moderationService.ActionAccept && action != moderationService.ActionReject {
		return "", "", "", false
	}
	return action, parts[1], parts[2], true
}

// deliver sends the machine's outgoing messages, attaching reply keyboards
// where requested.
func (h *Handler) deliver(ctx context.Context, b *bot.Bot, out []Outgoing) {
	for _, o := range out {
		params := &bot.SendMessageParams{
			ChatID: o.ChatID,
			Text:   o.Text,
		}
		if len(o.Keyboard) > 0 {
			params.ReplyMarkup = models.ReplyKeyboardMarkup{
				Keyboard: lo.Map(o.Keyboard, func(row []string, _ int) []models.KeyboardButton {
					return lo.Map(row, func(label string, _ int) models.KeyboardButton {
						return models.KeyboardButton{Text: label}
					})
				}),
				ResizeKeyboard: true,
			}
		}

		if _, err := b.SendMessage(ctx, params); err != nil {
			slog.Error("Failed to send message", "chat_id", o.ChatID, "error", err)
		}
	}
}
