package flows

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// Match result paging. Four rows are fetched so the fourth can signal that a
// "More Matches" prompt is worth sending; only three are ever shown.
const (
	matchPageSize   = 3
	matchProbeLimit = matchPageSize + 1
)

// Deps bundles everything a flow can touch. Flows never reach the database
// directly; all state goes through the services.
type Deps struct {
	Log           *logger.Logger
	Sender        wa.Sender
	Media         wa.MediaDownloader
	Conversations services.ConversationService
	Users         services.UserService
	Biodata       services.BiodataService
	Preferences   services.PreferenceService
	Matches       services.MatchService
}

// Registry holds one instance of every flow. The processor starts flows
// through the typed fields and routes mid-flow messages through Dispatch.
type Registry struct {
	CreateUser             *CreateUserFlow
	UpdateBiodata          *UpdateBiodataFlow
	RemoveUser             *RemoveUserFlow
	SetPreferences         *SetPreferencesFlow
	FindMatches            *FindMatchesFlow
	FindMatchesWithFilters *FindMatchesWithFiltersFlow
	ViewBio                *ViewBioFlow
	DeleteAccount          *DeleteAccountFlow

	log *logger.Logger
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		CreateUser:             &CreateUserFlow{deps: deps},
		UpdateBiodata:          &UpdateBiodataFlow{deps: deps},
		RemoveUser:             &RemoveUserFlow{deps: deps},
		SetPreferences:         &SetPreferencesFlow{deps: deps},
		FindMatches:            &FindMatchesFlow{deps: deps},
		FindMatchesWithFilters: &FindMatchesWithFiltersFlow{deps: deps},
		ViewBio:                &ViewBioFlow{deps: deps},
		DeleteAccount:          &DeleteAccountFlow{deps: deps},
		log:                    deps.Log.With("component", "FlowRegistry"),
	}
}

// Dispatch routes a message to the active flow's step handler. A state whose
// flow has no mid-flow steps (or an unknown flow tag from an older build) is
// cleared so the user is not stuck.
func (r *Registry) Dispatch(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	r.log.Info("dispatching to flow", "flow", state.Flow, "step", state.Step, "phone", state.Phone)

	switch state.Flow {
	case types.FlowCreateUser:
		return r.CreateUser.Handle(ctx, state, msg)
	case types.FlowUpdateBio:
		return r.UpdateBiodata.Handle(ctx, state, msg)
	case types.FlowRemoveUser:
		return r.RemoveUser.Handle(ctx, state, msg)
	case types.FlowSetPreferences:
		return r.SetPreferences.Handle(ctx, state, msg)
	case types.FlowFindMatches:
		return r.FindMatches.Handle(ctx, state, msg)
	case types.FlowDeleteAccount:
		return r.DeleteAccount.Handle(ctx, state, msg)
	default:
		r.log.Error("unknown flow in state, clearing", "flow", state.Flow, "phone", state.Phone)
		return r.CreateUser.deps.Conversations.Clear(ctx, state.Phone)
	}
}

// stateUserID reads a user id stashed in flow state data.
func stateUserID(data map[string]any, key string) (uuid.UUID, error) {
	s, ok := services.DataString(data, key)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s in flow state", key)
	}
	return uuid.Parse(s)
}

// sendMatches sends a header followed by one message per candidate card.
func sendMatches(ctx context.Context, sender wa.Sender, phone string, matches []types.Candidate) error {
	noun := "Matches"
	if len(matches) == 1 {
		noun = "Match"
	}
	header := fmt.Sprintf("✨ *Found %d Compatible %s!*\n\n", len(matches), noun)
	if err := sender.SendText(ctx, phone, header); err != nil {
		return err
	}
	for _, m := range matches {
		if err := sender.SendText(ctx, phone, services.FormatCandidate(m)); err != nil {
			return err
		}
	}
	return nil
}
