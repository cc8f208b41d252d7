package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

// MatchService is the candidate filter engine. All matching is a hard
// conjunctive filter over profiles; there is no scoring, the pinned ordering
// exists purely so pagination is consistent.
type MatchService interface {
	// FindCandidates applies an ad-hoc filter for the seeker.
	FindCandidates(ctx context.Context, seekerID uuid.UUID, filter types.Filter, limit, offset int) ([]types.Candidate, error)
	// FindMatches applies the seeker's stored preference (or no constraints
	// if none is saved).
	FindMatches(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]types.Candidate, error)
}

type matchService struct {
	db             *gorm.DB
	log            *logger.Logger
	profileRepo    repos.ProfileRepo
	preferenceRepo repos.PreferenceRepo
}

func NewMatchService(db *gorm.DB, baseLog *logger.Logger, profileRepo repos.ProfileRepo, preferenceRepo repos.PreferenceRepo) MatchService {
	return &matchService{
		db:             db,
		log:            baseLog.With("service", "MatchService"),
		profileRepo:    profileRepo,
		preferenceRepo: preferenceRepo,
	}
}

func oppositeGender(gender string) string {
	if gender == types.GenderMale {
		return types.GenderFemale
	}
	return types.GenderMale
}

func (s *matchService) FindCandidates(ctx context.Context, seekerID uuid.UUID, filter types.Filter, limit, offset int) ([]types.Candidate, error) {
	seeker, err := s.profileRepo.GetByUserID(ctx, nil, seekerID)
	if err != nil {
		return nil, err
	}
	if seeker == nil {
		// A user with no profile cannot be matched; not an error.
		s.log.Debug("Seeker has no profile", "seeker_id", seekerID)
		return []types.Candidate{}, nil
	}

	gender := oppositeGender(seeker.Gender)
	candidates, err := s.profileRepo.FindCandidates(ctx, nil, seekerID, gender, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Candidate query executed",
		"seeker_id", seekerID,
		"gender", gender,
		"limit", limit,
		"offset", offset,
		"found", len(candidates),
	)
	return candidates, nil
}

func (s *matchService) FindMatches(ctx context.Context, seekerID uuid.UUID, limit, offset int) ([]types.Candidate, error) {
	pref, err := s.preferenceRepo.GetByUserID(ctx, nil, seekerID)
	if err != nil {
		return nil, err
	}
	return s.FindCandidates(ctx, seekerID, types.FilterFromPreference(pref), limit, offset)
}

// FormatCandidate renders the result card sent to the seeker.
func FormatCandidate(c types.Candidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "👤 %s %s\n\n", c.FirstName, c.LastName)

	b.WriteString("📊 Basic Info:\n")
	fmt.Fprintf(&b, "   Age: %d years\n", c.Age)
	fmt.Fprintf(&b, "   Gender: %s\n", c.Gender)
	fmt.Fprintf(&b, "   Height: %s\n", c.Height)
	if c.Diet != "" {
		fmt.Fprintf(&b, "   Diet: %s\n", c.Diet)
	}
	b.WriteString("\n")

	b.WriteString("📍 Location:\n")
	fmt.Fprintf(&b, "   Native: %s\n", c.City)
	if c.CurrentCity != "" {
		fmt.Fprintf(&b, "   Current: %s\n", c.CurrentCity)
	}
	fmt.Fprintf(&b, "   Citizenship: %s\n", c.Citizenship)
	b.WriteString("\n")

	b.WriteString("🎓 Professional:\n")
	fmt.Fprintf(&b, "   Education: %s\n", c.Education)
	fmt.Fprintf(&b, "   Occupation: %s\n", c.Occupation)
	if c.Company != "" {
		fmt.Fprintf(&b, "   Company: %s\n", c.Company)
	}
	b.WriteString("\n")

	b.WriteString("🏛️ Community:\n")
	fmt.Fprintf(&b, "   Caste: %s\n", c.Caste)
	b.WriteString("\n")

	fmt.Fprintf(&b, "📞 Contact: %s\n", c.Phone)
	b.WriteString("\n" + strings.Repeat("-", 40) + "\n")

	return b.String()
}
