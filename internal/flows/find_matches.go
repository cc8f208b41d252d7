package flows

import (
	"context"

	"github.com/vivaahlink/vivaah-backend/internal/services"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

const (
	buttonMoreMatches   = "MORE_MATCHES"
	buttonNoMoreMatches = "NO_MORE_MATCHES"
)

var moreMatchesButtons = []wa.ButtonOption{
	{ID: buttonMoreMatches, Title: "More Matches"},
	{ID: buttonNoMoreMatches, Title: "No, I'm Okay"},
}

// FindMatchesFlow pages through matches against the member's saved
// preferences, three per batch. A fourth row is probed for on every batch so
// the "More Matches" prompt only appears when another page actually exists.
type FindMatchesFlow struct {
	deps Deps
}

func (f *FindMatchesFlow) Initialize(ctx context.Context, userPhone string) error {
	user, err := f.deps.Users.GetUserByPhone(ctx, userPhone)
	if err != nil {
		return err
	}
	if user == nil {
		return f.deps.Sender.SendText(ctx, userPhone, "Error: User not found. Please contact support.")
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, "🔍 Searching for compatible matches..."); err != nil {
		return err
	}

	matches, err := f.deps.Matches.FindMatches(ctx, user.ID, matchProbeLimit, 0)
	if err != nil {
		f.deps.Log.Error("error finding matches", "phone", userPhone, "error", err)
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error finding matches. Please try again later.")
	}

	if len(matches) == 0 {
		return f.deps.Sender.SendText(ctx, userPhone,
			"😕 No matches found based on your preferences.\n\nTry updating your preferences using 'set preferences' command to see more profiles.")
	}

	hasMore := len(matches) > matchPageSize
	if hasMore {
		matches = matches[:matchPageSize]
	}

	if err := sendMatches(ctx, f.deps.Sender, userPhone, matches); err != nil {
		return err
	}

	if !hasMore {
		return f.deps.Sender.SendText(ctx, userPhone,
			"✅ That's all the matches we have for you right now!\n\nCheck back later or update your preferences to see different profiles.")
	}

	if err := f.deps.Sender.SendButtons(ctx, userPhone,
		"Would you like to see more matches?", moreMatchesButtons); err != nil {
		return err
	}
	if err := f.deps.Conversations.StartFlow(ctx, userPhone, types.FlowFindMatches, map[string]any{
		"matchesShown": matchPageSize,
	}); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, userPhone, types.StepShowingMatches, nil)
}

func (f *FindMatchesFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	if state.Step == types.StepShowingMatches {
		return f.handleMatchResponse(ctx, state, msg)
	}
	return nil
}

func (f *FindMatchesFlow) handleMatchResponse(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	userPhone := state.Phone
	buttonID, _ := msg.ReplyID()

	// Anything but an explicit "More Matches" ends the flow.
	if buttonID != buttonMoreMatches {
		if buttonID == buttonNoMoreMatches {
			if err := f.deps.Sender.SendText(ctx, userPhone,
				"✅ Great! If you'd like to see matches again, just type 'find matches'.\n\nGood luck with your search! 💫"); err != nil {
				return err
			}
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	user, err := f.deps.Users.GetUserByPhone(ctx, userPhone)
	if err != nil {
		return err
	}
	if user == nil {
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"Error: User not found. Please contact support."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, "🔍 Finding more matches..."); err != nil {
		return err
	}

	shown, ok := services.DataInt(services.StateData(state), "matchesShown")
	if !ok {
		shown = matchPageSize
	}

	matches, err := f.deps.Matches.FindMatches(ctx, user.ID, matchProbeLimit, shown)
	if err != nil {
		f.deps.Log.Error("error finding more matches", "phone", userPhone, "error", err)
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error finding more matches. Please try again later."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	if len(matches) == 0 {
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"😕 No more matches available at the moment.\n\nCheck back later or update your preferences to see different profiles!"); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	hasMore := len(matches) > matchPageSize
	if hasMore {
		matches = matches[:matchPageSize]
	}

	if err := sendMatches(ctx, f.deps.Sender, userPhone, matches); err != nil {
		return err
	}

	if !hasMore {
		if err := f.deps.Sender.SendText(ctx, userPhone,
			"✅ That's all the matches we have for you right now!\n\nCheck back later or update your preferences to see different profiles."); err != nil {
			return err
		}
		return f.deps.Conversations.Clear(ctx, userPhone)
	}

	if err := f.deps.Sender.SendButtons(ctx, userPhone,
		"Would you like to see more matches?", moreMatchesButtons); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, userPhone, types.StepShowingMatches, map[string]any{
		"matchesShown": shown + matchPageSize,
	})
}
