package telegram

import (
	"errors"
	"strings"
	"testing"

	moderationService "github.com/amrahli/newsgate/internal/modules/moderation/service"
	errs "github.com/amrahli/newsgate/internal/shared/errors"
)

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		data    string
		action  string
		itemID  string
		linkage string
		ok      bool
	}{
		{"accept:5:Tech", "accept", "5", "Tech", true},
		{"reject:12:World News", "reject", "12", "World News", true},
		{"accept:5", "", "", "", false},
		{"promote:5:Tech", "", "", "", false},
		{"", "", "", "", false},
	}

	for _, tt := range tests {
		action, itemID, linkage, ok := parseCallbackData(tt.data)
		if ok != tt.ok || action != tt.action || itemID != tt.itemID || linkage != tt.linkage {
			t.Errorf("parseCallbackData(%q) = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
				tt.data, action, itemID, linkage, ok, tt.action, tt.itemID, tt.linkage, tt.ok)
		}
	}
}

func TestOutcomeText(t *testing.T) {
	accepted := outcomeText(&moderationService.Outcome{
		Accepted: true,
		Excerpt:  "Breaking news",
		Source:   "https://t.me/x",
	})
	for _, want := range []string{"Accepted", "Breaking news", "https://t.me/x"} {
		if !strings.Contains(accepted, want) {
			t.Errorf("accepted text missing %q:\n%s", want, accepted)
		}
	}

	rejected := outcomeText(&moderationService.Outcome{Excerpt: "Old news"})
	if !strings.Contains(rejected, "Rejected") || strings.Contains(rejected, "Source:") {
		t.Errorf("rejected text = %q", rejected)
	}
}

func TestResolveErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errs.ErrItemNotFound, "already processed"},
		{errs.ErrUnauthorizedModerator, "not allowed"},
		{errs.ErrLinkageNotFound, "no longer exists"},
		{errors.New("boom"), "Try again"},
	}
	for _, tt := range tests {
		if got := resolveErrorText(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("resolveErrorText(%v) = %q, want substring %q", tt.err, got, tt.want)
		}
	}
}
