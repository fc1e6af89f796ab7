package restyle

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	itemDomain "github.com/amrahli/newsgate/internal/modules/item/domain"
)

// DefaultPrompt is the restyle instruction used when a linkage has none set.
const DefaultPrompt = "Translate the following text into Azerbaijani, " +
	"without prefaces, and remove various links or mentions of channels " +
	"or watermarks, if text is too small do not add nothing new to it. " +
	"This is text for news channels. The text needs to be made interesting " +
	"and up to 1024 characters."

// Restyler rewrites item text through a chat completion. On any failure it
// falls back to the preprocessed original, never returning an error past this
// boundary.
type Restyler struct {
	client  *openai.Client
	model   string
	enabled bool
}

// New creates a restyler. An empty apiKey disables the model call; Restyle
// then always takes the fallback path.
func New(apiKey string, model string) *Restyler {
	r := &Restyler{model: model}
	if apiKey != "" {
		r.client = openai.NewClient(apiKey)
		r.enabled = true
	}
	slog.Info("Restyler initialized", "enabled", r.enabled, "model", model)
	return r
}

// Restyle rewrites text per the instruction (or DefaultPrompt when empty).
// The result is clamped to the 1024-character item contract.
func (r *Restyler) Restyle(ctx context.Context, text string, instruction string) string {
	cleaned := Preprocess(text)

	if !r.enabled {
		return cleaned
	}

	if instruction == "" {
		instruction = DefaultPrompt
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: instruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: cleaned,
			},
		},
	})
	if err != nil {
		slog.Error("Restyle request failed, using original text", "error", err)
		return cleaned
	}
	if len(resp.Choices) == 0 {
		slog.Error("Restyle response has no choices, using original text")
		return cleaned
	}

	return itemDomain.ClampText(strings.TrimSpace(resp.Choices[0].Message.Content))
}

// Preprocess collapses runs of six or more identical runes down to three and
// clamps the text to the item length contract.
func Preprocess(text string) string {
	return strings.TrimSpace(itemDomain.ClampText(collapseRuns(text)))
}

func collapseRuns(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	run := 0
	for i, r := range text {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		prev = r
		if run >= 6 {
			if run == 6 {
				// Drop the excess back to three.
				trimmed := strings.TrimSuffix(b.String(), strings.Repeat(string(r), 2))
				b.Reset()
				b.WriteString(trimmed)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
