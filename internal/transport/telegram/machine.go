package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	linkageDomain "github.com/amrahli/newsgate/internal/modules/linkage/domain"
	linkageService "github.com/amrahli/newsgate/internal/modules/linkage/service"
	"github.com/amrahli/newsgate/internal/modules/restyle"
	"github.com/amrahli/newsgate/internal/modules/session"
	"github.com/amrahli/newsgate/internal/shared/errors"
)

// Menu button labels. Typing one of these during a data-entry step is treated
// as navigation, never as data.
const (
	labelManageLinkages  = "🛠 Manage Linkages"
	labelViewLinkages    = "📋 View Linkages"
	labelCreateLinkage   = "➕ Create Linkage"
	labelEditLinkage     = "✏️ Edit Linkage"
	labelDeleteLinkage   = "🗑️ Delete Linkage"
	labelAddResources    = "➕ Add Resources"
	labelRemoveResources = "🗑️ Remove Resources"
	labelEditPrompt      = "✏️ Edit Prompt"
	labelPauseLinkage    = "⏸️ Pause Linkage"
	labelResumeLinkage   = "▶️ Resume Linkage"
	labelBackToMain      = "⬅️ Back to Main Menu"
	labelBackToSelection = "⬅️ Back to Linkage Selection"
	labelBackToEditMenu  = "⬅️ Back to Edit Menu"
)

var menuLabels = map[string]struct{}{
	labelManageLinkages:  {},
	labelViewLinkages:    {},
	labelCreateLinkage:   {},
	labelEditLinkage:     {},
	labelDeleteLinkage:   {},
	labelAddResources:    {},
	labelRemoveResources: {},
	labelEditPrompt:      {},
	labelPauseLinkage:    {},
	labelResumeLinkage:   {},
	labelBackToMain:      {},
	labelBackToSelection: {},
	labelBackToEditMenu:  {},
}

// Outgoing is one message the machine wants delivered.
type Outgoing struct {
	ChatID   int64
	Text     string
	Keyboard [][]string
}

// ChannelVerifier checks that the automation account can publish to a channel.
type ChannelVerifier interface {
	VerifyAdmin(ctx context.Context, channel string) error
}

// LinkagePoller triggers an immediate fetch pass for a freshly created linkage.
type LinkagePoller interface {
	PollLinkage(ctx context.Context, name string)
}

// Machine is the conversational configuration state machine: it maps
// (operator, session step, input text) to session transitions, linkage
// mutations and outgoing messages, with no transport dependency.
type Machine struct {
	sessions *session.Store
	linkages *linkageService.Service
	verifier ChannelVerifier
	poller   LinkagePoller
	password string
}

// NewMachine creates the state machine.
func NewMachine(sessions *session.Store, linkages *linkageService.Service, verifier ChannelVerifier, poller LinkagePoller, password string) *Machine {
	return &Machine{
		sessions: sessions,
		linkages: linkages,
		verifier: verifier,
		poller:   poller,
		password: password,
	}
}

// HandleText processes one private-chat message from an operator.
func (m *Machine) HandleText(ctx context.Context, operatorID int64, text string) []Outgoing {
	text = strings.TrimSpace(text)

	sess, hasSession := m.sessions.Get(operatorID)

	// The password gate holds unauthenticated operators regardless of input.
	if hasSession && sess.Step == session.StepAwaitingPassword {
		return m.handlePassword(operatorID, text)
	}
	if !m.sessions.IsAuthenticated(operatorID) {
		m.sessions.Set(operatorID, &session.Session{Step: session.StepAwaitingPassword})
		return []Outgoing{{ChatID: operatorID, Text: "🔒 Please enter the password to access the bot:"}}
	}

	// Top-level commands re-enter a branch from any state.
	switch text {
	case "/start", labelBackToMain:
		return m.mainMenu(operatorID)
	case labelManageLinkages:
		m.sessions.Clear(operatorID)
		return []Outgoing{{
			ChatID: operatorID,
			Text:   "🔧 Linkage Management Menu:\n\nChoose an action below to manage your linkages:",
			Keyboard: [][]string{
				{labelCreateLinkage},
				{labelEditLinkage, labelDeleteLinkage},
				{labelBackToMain},
			},
		}}
	case labelViewLinkages:
		return m.viewLinkages(operatorID)
	case labelCreateLinkage:
		m.sessions.Set(operatorID, &session.Session{Step: session.StepAwaitingLinkageName})
		return []Outgoing{{ChatID: operatorID, Text: "📝 Enter a name for the new linkage."}}
	case labelDeleteLinkage:
		return m.startDelete(operatorID)
	case labelEditLinkage:
		return m.startEdit(operatorID)
	}

	if !hasSession {
		return m.mainMenu(operatorID)
	}

	switch sess.Step {
	case session.StepAwaitingLinkageName:
		return m.enterLinkageName(operatorID, sess, text)
	case session.StepAwaitingResources:
		return m.enterResources(operatorID, sess, text)
	case session.StepAwaitingModerationChat:
		return []Outgoing{{ChatID: operatorID, Text: "⏳ Waiting to be added to the moderation chat. I will notify you as soon as it happens."}}
	case session.StepAwaitingPublicationChannel:
		return m.enterPublicationChannel(ctx, operatorID, sess, text)
	case session.StepDeleteLinkage:
		return m.enterDeleteChoice(operatorID, sess, text)
	case session.StepSelectLinkageToEdit:
		return m.enterEditChoice(operatorID, text)
	case session.StepSelectEditAction:
		return m.enterEditAction(operatorID, sess, text)
	case session.StepAwaitingResourcesToAdd:
		return m.enterResourcesToAdd(operatorID, sess, text)
	case session.StepAwaitingResourceToRemove:
		return m.enterResourceToRemove(operatorID, sess, text)
	case session.StepAwaitingPromptChange:
		return m.enterPromptChange(operatorID, sess, text)
	}

	return m.mainMenu(operatorID)
}

// HandleModerationChatAdded completes the cross-channel transition: the
// automation account was added to chatID by the operator while their session
// awaits a moderation chat.
func (m *Machine) HandleModerationChatAdded(operatorID int64, chatID int64) []Outgoing {
	sess, ok := m.sessions.Get(operatorID)
	if !ok || sess.Step != session.StepAwaitingModerationChat {
		return nil
	}

	sess.ModerationChatID = chatID
	sess.Step = session.StepAwaitingPublicationChannel
	m.sessions.Set(operatorID, sess)

	return []Outgoing{{
		ChatID: operatorID,
		Text: fmt.Sprintf("🔑 Linkage name: %s\n\n✅ Moderation chat registered. "+
			"Now send the link of the publication channel where I am an administrator.", sess.LinkageName),
	}}
}

func (m *Machine) handlePassword(operatorID int64, text string) []Outgoing {
	if text != m.password {
		return []Outgoing{{ChatID: operatorID, Text: "❌ Wrong password. Try again."}}
	}

	m.sessions.Authenticate(operatorID)
	m.sessions.Clear(operatorID)

	out := []Outgoing{{ChatID: operatorID, Text: "✅ Password accepted. Welcome!"}}
	return append(out, m.mainMenu(operatorID)...)
}

func (m *Machine) mainMenu(operatorID int64) []Outgoing {
	m.sessions.Clear(operatorID)
	return []Outgoing{{
		ChatID: operatorID,
		Text:   "🤖 Main menu\n\nChoose an option below:",
		Keyboard: [][]string{
			{labelManageLinkages},
			{labelViewLinkages},
		},
	}}
}

func (m *Machine) viewLinkages(operatorID int64) []Outgoing {
	all, err := m.linkages.All()
	if err != nil {
		return m.failure(operatorID, err)
	}
	if len(all) == 0 {
		return []Outgoing{{ChatID: operatorID, Text: "❌ No linkages yet."}}
	}

	names, err := m.linkages.Names()
	if err != nil {
		return m.failure(operatorID, err)
	}

	var b strings.Builder
	b.WriteString("📋 Current linkages:\n\n")
	for _, name := range names {
		l := all[name]
		status := "✅ Active"
		if !l.IsActive {
			status = "⏸️ Paused"
		}
		channel := l.PublicationChannel
		if channel == "" {
			channel = "not set"
		}
		resources := "No resources added"
		if len(l.Resources) > 0 {
			resources = strings.Join(lo.Map(l.Resources, func(r linkageDomain.Resource, _ int) string {
				return "• " + r.URL
			}), "\n")
		}
		prompt := l.Prompt
		if prompt == "" {
			prompt = restyle.DefaultPrompt
		}

		fmt.Fprintf(&b, "🔑 Name: %s\n📢 Publication channel: %s\n🔗 Resources:\n%s\n📝 Prompt:\n%s\n📌 Status: %s\n\n",
			name, channel, resources, prompt, status)
	}

	return []Outgoing{{ChatID: operatorID, Text: b.String()}}
}

func (m *Machine) startDelete(operatorID int64) []Outgoing {
	names, err := m.linkages.Names()
	if err != nil {
		return m.failure(operatorID, err)
	}
	if len(names) == 0 {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ No linkages yet. Create one first."}}
	}

	m.sessions.Set(operatorID, &session.Session{Step: session.StepDeleteLinkage, AllowedLinkages: names})
	return []Outgoing{{
		ChatID:   operatorID,
		Text:     "🔑 Choose a linkage to delete:",
		Keyboard: namesKeyboard(names),
	}}
}

func (m *Machine) startEdit(operatorID int64) []Outgoing {
	names, err := m.linkages.Names()
	if err != nil {
		return m.failure(operatorID, err)
	}
	if len(names) == 0 {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ No linkages yet. Create one first."}}
	}

	m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectLinkageToEdit})
	return []Outgoing{{
		ChatID:   operatorID,
		Text:     "✏️ Choose a linkage to edit:",
		Keyboard: namesKeyboard(names),
	}}
}

func (m *Machine) enterLinkageName(operatorID int64, sess *session.Session, text string) []Outgoing {
	if isMenuLabel(text) {
		return nil
	}

	exists, err := m.linkages.Exists(text)
	if err != nil {
		return m.failure(operatorID, err)
	}
	if exists {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ A linkage with this name already exists. Enter a different name."}}
	}

	sess.Step = session.StepAwaitingResources
	sess.LinkageName = text
	m.sessions.Set(operatorID, sess)

	return []Outgoing{{
		ChatID: operatorID,
		Text: fmt.Sprintf("🔑 Linkage name: %s\n\n🔗 Enter resources (Telegram channel links or RSS feeds) separated by semicolons.\n"+
			"Example: https://t.me/example1; https://rss.example.com/feed", text),
	}}
}

func (m *Machine) enterResources(operatorID int64, sess *session.Session, text string) []Outgoing {
	resources := parseResources(text)
	if len(resources) == 0 {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ You did not add any resources. Try again."}}
	}

	sess.Resources = resources
	sess.Step = session.StepAwaitingModerationChat
	m.sessions.Set(operatorID, sess)

	return []Outgoing{{
		ChatID: operatorID,
		Text: fmt.Sprintf("🔑 Linkage name: %s\n\n✅ Resources added. Now add me to the moderation chat. "+
			"I will notify you as soon as I am added.", sess.LinkageName),
	}}
}

func (m *Machine) enterPublicationChannel(ctx context.Context, operatorID int64, sess *session.Session, text string) []Outgoing {
	if err := m.verifier.VerifyAdmin(ctx, text); err != nil {
		slog.Warn("Publication channel verification failed", "channel", text, "error", err)
		return []Outgoing{{
			ChatID: operatorID,
			Text:   "⚠️ Channel verification failed. Make sure the link is correct and I am added as an administrator, then try again.",
		}}
	}

	if err := m.linkages.Create(sess.LinkageName, sess.Resources, sess.ModerationChatID, text); err != nil {
		slog.Error("Failed to save linkage", "linkage", sess.LinkageName, "error", err)
		return []Outgoing{{ChatID: operatorID, Text: "❌ Failed to save the linkage. Try again."}}
	}

	name := sess.LinkageName
	m.sessions.Clear(operatorID)

	// Immediate fetch pass so the operator sees items without waiting for
	// the next poll cycle.
	m.poller.PollLinkage(ctx, name)

	return []Outgoing{{
		ChatID: operatorID,
		Text: fmt.Sprintf("🔑 Linkage name: %s\n\n✅ Linkage created and activated! "+
			"Items from the configured resources will be sent to the moderation chat.", name),
	}}
}

func (m *Machine) enterDeleteChoice(operatorID int64, sess *session.Session, text string) []Outgoing {
	if !lo.Contains(sess.AllowedLinkages, text) {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ Please choose an existing linkage to delete."}}
	}

	if err := m.linkages.Delete(text); err != nil {
		return m.failure(operatorID, err)
	}

	out := []Outgoing{{ChatID: operatorID, Text: fmt.Sprintf("✅ Linkage %s deleted.", text)}}
	return append(out, m.mainMenu(operatorID)...)
}

func (m *Machine) enterEditChoice(operatorID int64, text string) []Outgoing {
	exists, err := m.linkages.Exists(text)
	if err != nil {
		return m.failure(operatorID, err)
	}
	if !exists {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ Please choose an existing linkage to edit."}}
	}

	m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectEditAction, LinkageName: text})
	return m.editActionMenu(operatorID, text)
}

func (m *Machine) enterEditAction(operatorID int64, sess *session.Session, text string) []Outgoing {
	name := sess.LinkageName

	switch text {
	case labelAddResources:
		m.sessions.Set(operatorID, &session.Session{Step: session.StepAwaitingResourcesToAdd, LinkageName: name})
		return []Outgoing{{
			ChatID: operatorID,
			Text:   fmt.Sprintf("✏️ Editing linkage: %s\n\nEnter the resources to add, separated by semicolons.", name),
		}}

	case labelEditPrompt:
		l, err := m.linkages.Get(name)
		if err != nil {
			return m.failure(operatorID, err)
		}
		current := l.Prompt
		if current == "" {
			current = restyle.DefaultPrompt
		}
		m.sessions.Set(operatorID, &session.Session{Step: session.StepAwaitingPromptChange, LinkageName: name})
		return []Outgoing{{
			ChatID: operatorID,
			Text:   fmt.Sprintf("✏️ Editing linkage: %s\n\nCurrent prompt:\n%s\n\nEnter the new prompt for processing items.", name, current),
		}}

	case labelRemoveResources:
		l, err := m.linkages.Get(name)
		if err != nil {
			return m.failure(operatorID, err)
		}
		if len(l.Resources) == 0 {
			return []Outgoing{{ChatID: operatorID, Text: "⚠️ This linkage has no resources to remove."}}
		}
		m.sessions.Set(operatorID, &session.Session{Step: session.StepAwaitingResourceToRemove, LinkageName: name})
		return []Outgoing{{
			ChatID:   operatorID,
			Text:     fmt.Sprintf("✏️ Choose a resource to remove from linkage: %s", name),
			Keyboard: resourcesKeyboard(l.Resources),
		}}

	case labelPauseLinkage, labelResumeLinkage:
		active, err := m.linkages.ToggleActive(name)
		if err != nil {
			return m.failure(operatorID, err)
		}
		status := "✅ Active"
		if !active {
			status = "⏸️ Paused"
		}
		out := []Outgoing{{ChatID: operatorID, Text: fmt.Sprintf("✅ Linkage %s is now: %s.", name, status)}}
		return append(out, m.editActionMenu(operatorID, name)...)

	case labelBackToSelection:
		return m.startEdit(operatorID)
	}

	return []Outgoing{{ChatID: operatorID, Text: "⚠️ Please choose a valid action."}}
}

func (m *Machine) enterResourcesToAdd(operatorID int64, sess *session.Session, text string) []Outgoing {
	if isMenuLabel(text) {
		m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectEditAction, LinkageName: sess.LinkageName})
		return m.editActionMenu(operatorID, sess.LinkageName)
	}

	resources := parseResources(text)
	if len(resources) == 0 {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ You did not add any resources. Try again."}}
	}

	if err := m.linkages.AddResources(sess.LinkageName, resources); err != nil {
		return m.failure(operatorID, err)
	}

	name := sess.LinkageName
	out := []Outgoing{{ChatID: operatorID, Text: fmt.Sprintf("✅ Resources added to linkage: %s.", name)}}
	return append(out, m.mainMenu(operatorID)...)
}

func (m *Machine) enterResourceToRemove(operatorID int64, sess *session.Session, text string) []Outgoing {
	if text == labelBackToEditMenu {
		m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectEditAction, LinkageName: sess.LinkageName})
		return m.editActionMenu(operatorID, sess.LinkageName)
	}

	if err := m.linkages.RemoveResource(sess.LinkageName, text); err != nil {
		return []Outgoing{{ChatID: operatorID, Text: "⚠️ Please choose a valid resource to remove."}}
	}

	l, err := m.linkages.Get(sess.LinkageName)
	if err != nil {
		return m.failure(operatorID, err)
	}

	out := []Outgoing{{ChatID: operatorID, Text: fmt.Sprintf("✅ Resource removed: %s.", text)}}
	if len(l.Resources) == 0 {
		return append(out, m.mainMenu(operatorID)...)
	}
	return append(out, Outgoing{
		ChatID:   operatorID,
		Text:     "Choose the next resource to remove:",
		Keyboard: resourcesKeyboard(l.Resources),
	})
}

func (m *Machine) enterPromptChange(operatorID int64, sess *session.Session, text string) []Outgoing {
	if isMenuLabel(text) {
		m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectEditAction, LinkageName: sess.LinkageName})
		return m.editActionMenu(operatorID, sess.LinkageName)
	}
	if strings.HasPrefix(text, "/") {
		return nil
	}

	if err := m.linkages.SetPrompt(sess.LinkageName, text); err != nil {
		if err == errors.ErrLinkageNotFound {
			m.sessions.Clear(operatorID)
			return []Outgoing{{ChatID: operatorID, Text: "⚠️ Linkage not found. Try again."}}
		}
		return m.failure(operatorID, err)
	}

	name := sess.LinkageName
	m.sessions.Set(operatorID, &session.Session{Step: session.StepSelectEditAction, LinkageName: name})

	out := []Outgoing{{ChatID: operatorID, Text: fmt.Sprintf("✅ Prompt for linkage %s updated!", name)}}
	return append(out, m.editActionMenu(operatorID, name)...)
}

func (m *Machine) editActionMenu(operatorID int64, name string) []Outgoing {
	l, err := m.linkages.Get(name)
	if err != nil {
		return m.failure(operatorID, err)
	}

	toggle := labelPauseLinkage
	if !l.IsActive {
		toggle = labelResumeLinkage
	}

	return []Outgoing{{
		ChatID: operatorID,
		Text:   fmt.Sprintf("✏️ You are editing linkage: %s\n\nWhat do you want to do?", name),
		Keyboard: [][]string{
			{labelAddResources, labelRemoveResources},
			{labelEditPrompt},
			{toggle},
			{labelBackToSelection},
		},
	}}
}

func (m *Machine) failure(operatorID int64, err error) []Outgoing {
	slog.Error("Operator interaction failed", "operator_id", operatorID, "error", err)
	return []Outgoing{{ChatID: operatorID, Text: "❌ Something went wrong. Try again later."}}
}

func isMenuLabel(text string) bool {
	_, ok := menuLabels[text]
	return ok
}

func parseResources(text string) []linkageDomain.Resource {
	return lo.FilterMap(strings.Split(text, ";"), func(part string, _ int) (linkageDomain.Resource, bool) {
		part = strings.TrimSpace(part)
		if part == "" {
			return linkageDomain.Resource{}, false
		}
		return linkageDomain.Resource{URL: part}, true
	})
}

func namesKeyboard(names []string) [][]string {
	rows := lo.Map(names, func(name string, _ int) []string { return []string{name} })
	return append(rows, []string{labelBackToMain})
}

func resourcesKeyboard(resources []linkageDomain.Resource) [][]string {
	rows := lo.Map(resources, func(r linkageDomain.Resource, _ int) []string { return []string{r.URL} })
	return append(rows, []string{labelBackToEditMenu})
}
