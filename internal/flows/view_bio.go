package flows

import (
	"context"
	"fmt"
	"strings"

	"github.com/vivaahlink/vivaah-backend/internal/types"
)

// ViewBioFlow sends the member their own profile. It completes in one turn
// and holds no conversation state.
type ViewBioFlow struct {
	deps Deps
}

func (f *ViewBioFlow) Initialize(ctx context.Context, userPhone string) error {
	user, err := f.deps.Users.GetUserByPhone(ctx, userPhone)
	if err != nil {
		return err
	}
	if user == nil {
		return f.deps.Sender.SendText(ctx, userPhone, "Error: User not found. Please contact support.")
	}

	profile, err := f.deps.Biodata.GetProfile(ctx, user.ID)
	if err != nil {
		f.deps.Log.Error("error viewing biodata", "phone", userPhone, "error", err)
		return f.deps.Sender.SendText(ctx, userPhone,
			"Sorry, there was an error retrieving your biodata. Please try again later.")
	}
	if profile == nil {
		return f.deps.Sender.SendText(ctx, userPhone,
			"❌ You don't have a biodata profile yet.\n\nPlease contact admin to create your profile.")
	}

	return f.deps.Sender.SendText(ctx, userPhone, formatOwnBio(profile))
}

func formatOwnBio(p *types.Profile) string {
	var b strings.Builder
	b.WriteString("📋 *Your Biodata Profile*\n\n")

	b.WriteString("👤 *Personal Information*\n")
	fmt.Fprintf(&b, "   Name: %s %s\n", p.FirstName, p.LastName)
	fmt.Fprintf(&b, "   Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "   Age: %d years\n", p.Age)
	fmt.Fprintf(&b, "   Date of Birth: %s\n", p.DateOfBirth)
	fmt.Fprintf(&b, "   Height: %s\n", p.Height)
	if p.Diet != "" {
		fmt.Fprintf(&b, "   Diet: %s\n", p.Diet)
	}
	b.WriteString("\n")

	b.WriteString("📍 *Location Details*\n")
	fmt.Fprintf(&b, "   Native City: %s\n", p.City)
	if p.CurrentCity != "" {
		fmt.Fprintf(&b, "   Current City: %s\n", p.CurrentCity)
	}
	fmt.Fprintf(&b, "   Citizenship: %s\n", p.Citizenship)
	b.WriteString("\n")

	b.WriteString("🎓 *Professional Information*\n")
	fmt.Fprintf(&b, "   Education: %s\n", p.Education)
	fmt.Fprintf(&b, "   Occupation: %s\n", p.Occupation)
	if p.Company != "" {
		fmt.Fprintf(&b, "   Company: %s\n", p.Company)
	}
	b.WriteString("\n")

	b.WriteString("🏛️ *Community*\n")
	fmt.Fprintf(&b, "   Caste: %s\n", p.Caste)
	b.WriteString("\n")

	b.WriteString("💡 *To update your biodata, please contact the admin.*")
	return b.String()
}
