package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/vivaahlink/vivaah-backend/internal/normalize"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

// FindMatchesWithFiltersFlow is the one-shot ad-hoc search: filters are
// extracted from the triggering message itself, applied once, and never
// saved. It holds no conversation state.
type FindMatchesWithFiltersFlow struct {
	deps Deps
}

func (f *FindMatchesWithFiltersFlow) Initialize(ctx context.Context, userPhone, messageText string) error {
	user, err := f.deps.Users.GetUserByPhone(ctx, userPhone)
	if err != nil {
		return err
	}
	if user == nil {
		return f.deps.Sender.SendText(ctx, userPhone, "Error: User not found. Please contact support.")
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, "🔍 Analyzing your filter requirements..."); err != nil {
		return err
	}

	filter, _, err := f.deps.Preferences.ExtractFilter(ctx, messageText)
	if err != nil {
		f.deps.Log.Error("error extracting ad-hoc filters", "phone", userPhone, "error", err)
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error finding matches with your filters. Please try again later.")
	}

	if filter.IsEmpty() {
		return f.deps.Sender.SendText(ctx, userPhone,
			"😕 I couldn't extract any specific filters from your message.\n\nPlease try again with specific requirements like:\n- 'Find matches age 25 to 30'\n- 'Show profiles height 5'5 and engineer'\n- 'Find age 28 to 35 from Mumbai'")
	}

	if err := f.deps.Sender.SendText(ctx, userPhone, formatFilterSummary(filter)); err != nil {
		return err
	}
	if err := f.deps.Sender.SendText(ctx, userPhone, "🔍 Searching for matches with these filters..."); err != nil {
		return err
	}

	matches, err := f.deps.Matches.FindCandidates(ctx, user.ID, filter, matchPageSize, 0)
	if err != nil {
		f.deps.Log.Error("error finding filtered matches", "phone", userPhone, "error", err)
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error finding matches with your filters. Please try again later.")
	}

	if len(matches) == 0 {
		return f.deps.Sender.SendText(ctx, userPhone,
			"😕 No matches found with these filters.\n\nTry adjusting your filters or use 'find matches' to see matches based on your saved preferences.")
	}

	if err := sendMatches(ctx, f.deps.Sender, userPhone, matches); err != nil {
		return err
	}

	return f.deps.Sender.SendText(ctx, userPhone,
		"✅ That's all the matches we found with your filters!\n\nThese filters were not saved. To save your preferences, use 'set preferences' command.")
}

func formatFilterSummary(filter types.Filter) string {
	var b strings.Builder
	b.WriteString("🎯 *Applied Filters:*\n")

	if filter.AgeMin != nil || filter.AgeMax != nil {
		fmt.Fprintf(&b, "   Age: %s - %s years\n", intOrAny(filter.AgeMin), intOrAny(filter.AgeMax))
	}
	if filter.HeightMinCm != nil || filter.HeightMaxCm != nil {
		fmt.Fprintf(&b, "   Height: %s - %s\n", heightOrAny(filter.HeightMinCm), heightOrAny(filter.HeightMaxCm))
	}
	if filter.MinEducationLevel != nil {
		fmt.Fprintf(&b, "   Education Level: %d+\n", *filter.MinEducationLevel)
	}
	if filter.Occupation != nil {
		fmt.Fprintf(&b, "   Occupation: %s\n", *filter.Occupation)
	}
	if filter.City != nil {
		fmt.Fprintf(&b, "   City: %s\n", *filter.City)
	}
	if filter.Citizenship != nil {
		fmt.Fprintf(&b, "   Citizenship: %s\n", *filter.Citizenship)
	}
	if filter.Caste != nil {
		fmt.Fprintf(&b, "   Caste: %s\n", *filter.Caste)
	}
	if filter.Diet != nil {
		fmt.Fprintf(&b, "   Diet: %s\n", *filter.Diet)
	}
	return b.String()
}

func intOrAny(v *int) string {
	if v == nil {
		return "any"
	}
	return fmt.Sprintf("%d", *v)
}

func heightOrAny(cm *int) string {
	if cm == nil {
		return "any"
	}
	return normalize.FormatHeightCm(*cm)
}
