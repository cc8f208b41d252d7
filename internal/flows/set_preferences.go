package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/vivaahlink/vivaah-backend/internal/normalize"
	"github.com/vivaahlink/vivaah-backend/internal/types"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

const preferencesInstructions = `📝 *Set Your Partner Preferences*

Please describe your ideal partner preferences in natural language. You can mention:

✓ Age range (e.g., "25-30 years")
✓ Height requirements (e.g., "at least 5'6\"")
✓ Education level (e.g., "Graduate or above")
✓ Occupation (e.g., "Engineer" or "Doctor")
✓ Location preference (e.g., "from Mumbai")
✓ Citizenship (e.g., "Indian citizen")
✓ Caste/Community preference
✓ Dietary preference (e.g., "Vegetarian")
✓ Any other specific requirements

*Example:*
"I'm looking for someone aged 25-30, should be at least graduate, preferably working in IT, from Mumbai or Delhi, vegetarian, and should be from Patel community."

Please type your preferences now:`

// SetPreferencesFlow asks for free-text partner criteria, extracts a
// structured filter from it, and stores it as the member's saved preference.
type SetPreferencesFlow struct {
	deps Deps
}

func (f *SetPreferencesFlow) Initialize(ctx context.Context, userPhone string) error {
	if err := f.deps.Conversations.StartFlow(ctx, userPhone, types.FlowSetPreferences, nil); err != nil {
		return err
	}
	if err := f.deps.Sender.SendText(ctx, userPhone, preferencesInstructions); err != nil {
		return err
	}
	return f.deps.Conversations.Advance(ctx, userPhone, types.StepAwaitingPreferences, nil)
}

func (f *SetPreferencesFlow) Handle(ctx context.Context, state *types.ConversationState, msg *wa.Message) error {
	if state.Step == types.StepAwaitingPreferences {
		return f.handlePreferencesInput(ctx, state.Phone, msg)
	}
	return nil
}

func (f *SetPreferencesFlow) handlePreferencesInput(ctx context.Context, userPhone string, msg *wa.Message) error {
	text, ok := msg.TextBody()
	if !ok {
		return f.deps.Sender.SendText(ctx, userPhone, "Please provide your preferences as text.")
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, "Processing your preferences..."); err != nil {
		return err
	}

	filter, extra, err := f.deps.Preferences.ExtractFilter(ctx, text)
	if err != nil {
		f.deps.Log.Error("error processing preferences", "phone", userPhone, "error", err)
		// Stay on the same step so the member can retry.
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error processing your preferences. Please try again or contact support.")
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

	if err := f.deps.Preferences.Save(ctx, user.ID, filter, extra); err != nil {
		f.deps.Log.Error("error saving preferences", "phone", userPhone, "error", err)
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error processing your preferences. Please try again or contact support.")
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, formatPreferenceConfirmation(filter)); err != nil {
		return err
	}
	return f.deps.Conversations.Clear(ctx, userPhone)
}

func formatPreferenceConfirmation(filter types.Filter) string {
	var b strings.Builder
	b.WriteString("✅ *Preferences Saved Successfully!*\n\n")
	b.WriteString("Your partner preferences have been saved:\n\n")

	if filter.AgeMin != nil || filter.AgeMax != nil {
		b.WriteString("📊 Age: ")
		switch {
		case filter.AgeMin != nil && filter.AgeMax != nil:
			fmt.Fprintf(&b, "%d-%d years\n", *filter.AgeMin, *filter.AgeMax)
		case filter.AgeMin != nil:
			fmt.Fprintf(&b, "%d+ years\n", *filter.AgeMin)
		default:
			fmt.Fprintf(&b, "up to %d years\n", *filter.AgeMax)
		}
	}

	if filter.HeightMinCm != nil || filter.HeightMaxCm != nil {
		b.WriteString("📏 Height: ")
		switch {
		case filter.HeightMinCm != nil && filter.HeightMaxCm != nil:
			fmt.Fprintf(&b, "%s - %s\n",
				normalize.FormatHeightCm(*filter.HeightMinCm), normalize.FormatHeightCm(*filter.HeightMaxCm))
		case filter.HeightMinCm != nil:
			fmt.Fprintf(&b, "at least %s\n", normalize.FormatHeightCm(*filter.HeightMinCm))
		default:
			fmt.Fprintf(&b, "up to %s\n", normalize.FormatHeightCm(*filter.HeightMaxCm))
		}
	}

	if filter.MinEducationLevel != nil {
		fmt.Fprintf(&b, "🎓 Education: %s or above\n", normalize.Level(*filter.MinEducationLevel).Name())
	}
	if filter.Occupation != nil {
		fmt.Fprintf(&b, "💼 Occupation: %s\n", *filter.Occupation)
	}
	if filter.City != nil {
		fmt.Fprintf(&b, "📍 Location: %s\n", *filter.City)
	}
	if filter.Citizenship != nil {
		fmt.Fprintf(&b, "🌍 Citizenship: %s\n", *filter.Citizenship)
	}
	if filter.Caste != nil {
		fmt.Fprintf(&b, "🏛️ Community: %s\n", *filter.Caste)
	}
	if filter.Diet != nil {
		fmt.Fprintf(&b, "🥗 Diet: %s\n", *filter.Diet)
	}

	b.WriteString("\nYou can now use \"find matches\" to see compatible profiles!\n\n")
	b.WriteString("💡 Type \"set preferences\" anytime to update your preferences.")
	return b.String()
}
