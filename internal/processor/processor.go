package processor

import (
	"context"
	"errors"
	"strings"

	"github.com/vivaahlink/vivaah-backend/internal/flows"
	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// globalCommands are recognized verbatim at any point, active flow or not,
// without a classifier round trip. Free-text variants ("never mind", "please
// stop") only resolve at the menu level, through the classifier.
var globalCommands = map[string]string{
	"end":    services.EventEndFlow,
	"cancel": services.EventEndFlow,
	"stop":   services.EventEndFlow,
	"help":   services.EventHelp,
	"menu":   services.EventHelp,
}

var userMenuButtons = []wa.ButtonOption{
	{ID: "SET_PREFERENCES", Title: "Set Preferences"},
	{ID: "FIND_MATCHES", Title: "Find Matches"},
	{ID: "VIEW_BIO", Title: "View My Bio"},
}

const adminTemplateName = "matchmaking_admin"

// Processor runs the per-message pipeline: global-command check, then either
// dispatch into the active flow or route a fresh intent.
type Processor struct {
	log           *logger.Logger
	sender        wa.Sender
	conversations services.ConversationService
	users         services.UserService
	intents       services.IntentService
	registry      *flows.Registry
}

func New(
	baseLog *logger.Logger,
	sender wa.Sender,
	conversations services.ConversationService,
	users services.UserService,
	intents services.IntentService,
	registry *flows.Registry,
) *Processor {
	return &Processor{
		log:           baseLog.With("component", "Processor"),
		sender:        sender,
		conversations: conversations,
		users:         users,
		intents:       intents,
		registry:      registry,
	}
}

// Process handles one inbound message end to end. The returned error means
// the message failed in a way the webhook should report; user-recoverable
// problems are answered in-band and return nil.
func (p *Processor) Process(ctx context.Context, msg *wa.Message) error {
	phone := msg.From

	state, err := p.conversations.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			p.log.Error("conversation storage unavailable", "phone", phone)
			return p.sender.SendText(ctx, phone,
				"Sorry, we're having trouble right now. Please resend your message in a moment.")
		}
		return err
	}

	if event, word, ok := p.globalCommand(msg); ok {
		switch {
		case event == services.EventEndFlow:
			// At the delete confirmation the word "cancel" belongs to the
			// flow: its reply must say the account is safe, not just that a
			// flow was aborted. "end"/"stop" still abort generically.
			if word == "cancel" && state != nil &&
				state.Flow == types.FlowDeleteAccount && state.Step == types.StepAwaitingConfirmation {
				break
			}
			return p.handleEndCommand(ctx, phone, state != nil)
		case event == services.EventHelp:
			// Informs only; an active flow stays active.
			return p.showUserMenu(ctx, phone)
		}
	}

	if state != nil {
		if err := p.registry.Dispatch(ctx, state, msg); err != nil {
			if errors.Is(err, services.ErrStateGone) {
				p.log.Warn("state vanished mid-dispatch", "phone", phone)
				return nil
			}
			// A step handler letting an error escape means an unexpected
			// failure; clear so the user is not stranded at a dead step.
			p.log.Error("flow dispatch failed, clearing state", "phone", phone, "flow", state.Flow, "error", err)
			if clearErr := p.conversations.Clear(ctx, phone); clearErr != nil {
				p.log.Error("failed to clear state after dispatch error", "phone", phone, "error", clearErr)
			}
			return p.sender.SendText(ctx, phone, "Sorry, an error occurred. Please try again.")
		}
		return nil
	}

	return p.routeIntent(ctx, phone, msg)
}

func (p *Processor) globalCommand(msg *wa.Message) (event, word string, ok bool) {
	text, ok := msg.TextBody()
	if !ok {
		return "", "", false
	}
	word = strings.ToLower(strings.TrimSpace(text))
	event, ok = globalCommands[word]
	return event, word, ok
}

func (p *Processor) handleEndCommand(ctx context.Context, phone string, hasActiveFlow bool) error {
	if !hasActiveFlow {
		return p.sender.SendText(ctx, phone, "No active flow to cancel.")
	}
	if err := p.conversations.Clear(ctx, phone); err != nil {
		return err
	}
	return p.sender.SendText(ctx, phone, "❌ Current flow cancelled. You can start a new action anytime.")
}

// routeIntent classifies a message with no active flow behind it and starts
// the matching flow. Anything below the confidence threshold falls back to
// the root menu rather than guessing.
func (p *Processor) routeIntent(ctx context.Context, phone string, msg *wa.Message) error {
	isAdmin := p.users.IsAdmin(ctx, phone)
	intent, err := p.intents.DetectMenuIntent(ctx, msg, isAdmin)
	if err != nil {
		// Collaborator failure, not an unclassifiable message: asking for a
		// retry beats showing a menu the user did not ask for.
		p.log.Error("intent classification failed", "phone", phone, "error", err)
		return p.sender.SendText(ctx, phone,
			"Sorry, we're having trouble understanding your message right now. Please try again in a moment.")
	}

	p.log.Info("routing intent",
		"phone", phone, "event", intent.Event, "confidence", intent.Confidence, "isAdmin", isAdmin)

	if intent.Confidence < services.ConfidenceThreshold {
		return p.showMenuFor(ctx, phone, isAdmin)
	}

	switch intent.Event {
	case services.EventGreeting, services.EventHelp:
		return p.showMenuFor(ctx, phone, isAdmin)

	case services.EventEndFlow:
		return p.sender.SendText(ctx, phone, "No active flow to cancel.")

	case services.EventSetPreferences:
		if isAdmin {
			return p.sender.SendText(ctx, phone,
				"Admins don't need to set preferences. This feature is for users only.")
		}
		return p.registry.SetPreferences.Initialize(ctx, phone)

	case services.EventFindMatches:
		if isAdmin {
			return p.sender.SendText(ctx, phone,
				"Admins don't search for matches. This feature is for users only.")
		}
		return p.registry.FindMatches.Initialize(ctx, phone)

	case services.EventFindMatchesWithFilters:
		if isAdmin {
			return p.sender.SendText(ctx, phone,
				"Admins don't search for matches. This feature is for users only.")
		}
		text, _ := msg.TextBody()
		return p.registry.FindMatchesWithFilters.Initialize(ctx, phone, text)

	case services.EventViewBio:
		if isAdmin {
			return p.sender.SendText(ctx, phone,
				"This menu is for users only. Admins should use the admin template.")
		}
		return p.registry.ViewBio.Initialize(ctx, phone)

	case services.EventDeleteAccount:
		if isAdmin {
			return p.sender.SendText(ctx, phone,
				"❌ Admin accounts cannot be deleted through this method. Please contact system administrator.")
		}
		return p.registry.DeleteAccount.Initialize(ctx, phone)

	case services.EventCreateUser:
		if !isAdmin {
			return p.sender.SendText(ctx, phone, "You don't have permission to perform this action.")
		}
		return p.registry.CreateUser.Initialize(ctx, phone)

	case services.EventUpdateBio:
		if !isAdmin {
			return p.sender.SendText(ctx, phone, "You don't have permission to perform this action.")
		}
		return p.registry.UpdateBiodata.Initialize(ctx, phone)

	case services.EventRemoveUser:
		if !isAdmin {
			return p.sender.SendText(ctx, phone, "You don't have permission to perform this action.")
		}
		return p.registry.RemoveUser.Initialize(ctx, phone)

	default:
		return p.showMenuFor(ctx, phone, isAdmin)
	}
}

func (p *Processor) showMenuFor(ctx context.Context, phone string, isAdmin bool) error {
	if isAdmin {
		return p.sender.SendTemplate(ctx, phone, adminTemplateName)
	}
	return p.showUserMenu(ctx, phone)
}

func (p *Processor) showUserMenu(ctx context.Context, phone string) error {
	if err := p.sender.SendText(ctx, phone, "👋 Welcome! Please choose an option:"); err != nil {
		return err
	}
	return p.sender.SendButtons(ctx, phone, "What would you like to do?", userMenuButtons)
}
