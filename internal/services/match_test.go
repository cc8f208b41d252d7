package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

type memberSeed struct {
	phone          string
	gender         string
	age            int
	heightCm       int
	educationLevel int
	city           string
	currentCity    string
	occupation     string
}

func seedMember(t *testing.T, db *gorm.DB, seed memberSeed) uuid.UUID {
	t.Helper()
	user := &types.User{ID: uuid.New(), Phone: seed.phone}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", seed.phone, err)
	}
	profile := &types.Profile{
		ID:             uuid.New(),
		UserID:         user.ID,
		FirstName:      "Test",
		LastName:       seed.phone,
		Gender:         seed.gender,
		Age:            seed.age,
		DateOfBirth:    "1995-01-01",
		City:           seed.city,
		CurrentCity:    seed.currentCity,
		Citizenship:    "Indian",
		Caste:          "Patel",
		Education:      "Graduate",
		EducationLevel: seed.educationLevel,
		Occupation:     seed.occupation,
		Height:         "5'8\"",
		HeightCm:       seed.heightCm,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("seed profile %s: %v", seed.phone, err)
	}
	return user.ID
}

func newMatchService(t *testing.T, db *gorm.DB) MatchService {
	t.Helper()
	log := newTestLogger(t)
	return NewMatchService(db, log, repos.NewProfileRepo(db, log), repos.NewPreferenceRepo(db, log))
}

func TestFindCandidatesExcludesSeekerAndSameGender(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "912", gender: types.GenderMale, age: 28, heightCm: 170, educationLevel: 6, city: "Mumbai", occupation: "Doctor"})
	seedMember(t, db, memberSeed{phone: "913", gender: types.GenderFemale, age: 27, heightCm: 160, educationLevel: 6, city: "Delhi", occupation: "Teacher"})

	got, err := svc.FindCandidates(ctx, seekerID, types.Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidate count: want=1 got=%d", len(got))
	}
	if got[0].Phone != "913" {
		t.Fatalf("candidate phone: want=913 got=%s", got[0].Phone)
	}
	if got[0].Gender != types.GenderFemale {
		t.Fatalf("candidate gender: want=%s got=%s", types.GenderFemale, got[0].Gender)
	}
}

func TestFindCandidatesSeekerWithoutProfile(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seedMember(t, db, memberSeed{phone: "913", gender: types.GenderFemale, age: 27, heightCm: 160, educationLevel: 6, city: "Delhi", occupation: "Teacher"})

	got, err := svc.FindCandidates(ctx, uuid.New(), types.Filter{}, 10, 0)
	if err != nil {
		t.Fatalf("FindCandidates without profile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("candidates for profileless seeker: want=0 got=%d", len(got))
	}
}

func TestFindCandidatesAppliesConjunctiveFilter(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "921", gender: types.GenderFemale, age: 26, heightCm: 160, educationLevel: 7, city: "Mumbai", occupation: "Software Engineer"})
	seedMember(t, db, memberSeed{phone: "922", gender: types.GenderFemale, age: 26, heightCm: 160, educationLevel: 5, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "923", gender: types.GenderFemale, age: 38, heightCm: 160, educationLevel: 7, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "924", gender: types.GenderFemale, age: 26, heightCm: 140, educationLevel: 7, city: "Mumbai", occupation: "Engineer"})

	ageMin, ageMax := 25, 30
	heightMin := 150
	minEdu := 6
	occupation := "engineer"
	filter := types.Filter{
		AgeMin:            &ageMin,
		AgeMax:            &ageMax,
		HeightMinCm:       &heightMin,
		MinEducationLevel: &minEdu,
		Occupation:        &occupation,
	}

	got, err := svc.FindCandidates(ctx, seekerID, filter, 10, 0)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("filtered count: want=1 got=%d", len(got))
	}
	if got[0].Phone != "921" {
		t.Fatalf("filtered candidate: want=921 got=%s", got[0].Phone)
	}
}

func TestFindCandidatesCityMatchesNativeOrCurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "931", gender: types.GenderFemale, age: 27, heightCm: 160, educationLevel: 6, city: "Pune", currentCity: "Mumbai", occupation: "Teacher"})
	seedMember(t, db, memberSeed{phone: "932", gender: types.GenderFemale, age: 27, heightCm: 160, educationLevel: 6, city: "Mumbai", currentCity: "Delhi", occupation: "Teacher"})
	seedMember(t, db, memberSeed{phone: "933", gender: types.GenderFemale, age: 27, heightCm: 160, educationLevel: 6, city: "Delhi", currentCity: "Chennai", occupation: "Teacher"})

	city := "mumbai"
	got, err := svc.FindCandidates(ctx, seekerID, types.Filter{City: &city}, 10, 0)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("city match count: want=2 got=%d", len(got))
	}
	for _, c := range got {
		if c.Phone == "933" {
			t.Fatalf("candidate 933 matched city filter but lives elsewhere")
		}
	}
}

func TestFindCandidatesPaginationNeverRepeatsOrSkips(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	for i := 0; i < 7; i++ {
		seedMember(t, db, memberSeed{
			phone: fmt.Sprintf("95%d", i), gender: types.GenderFemale,
			age: 25 + i, heightCm: 155 + i, educationLevel: 6,
			city: "Mumbai", occupation: "Teacher",
		})
	}

	all, err := svc.FindCandidates(ctx, seekerID, types.Filter{}, 100, 0)
	if err != nil {
		t.Fatalf("FindCandidates all: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("total candidates: want=7 got=%d", len(all))
	}

	var paged []types.Candidate
	for offset := 0; offset < len(all); offset += 3 {
		page, err := svc.FindCandidates(ctx, seekerID, types.Filter{}, 3, offset)
		if err != nil {
			t.Fatalf("FindCandidates page at %d: %v", offset, err)
		}
		paged = append(paged, page...)
	}

	if len(paged) != len(all) {
		t.Fatalf("paged total: want=%d got=%d", len(all), len(paged))
	}
	seen := map[string]bool{}
	for i, c := range paged {
		if seen[c.Phone] {
			t.Fatalf("pagination repeated candidate %s", c.Phone)
		}
		seen[c.Phone] = true
		if c.Phone != all[i].Phone {
			t.Fatalf("pagination order at %d: want=%s got=%s", i, all[i].Phone, c.Phone)
		}
	}
}

func TestFindMatchesUsesSavedPreference(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := newTestLogger(t)
	preferenceRepo := repos.NewPreferenceRepo(db, log)
	svc := NewMatchService(db, log, repos.NewProfileRepo(db, log), preferenceRepo)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "941", gender: types.GenderFemale, age: 26, heightCm: 160, educationLevel: 6, city: "Mumbai", occupation: "Teacher"})
	seedMember(t, db, memberSeed{phone: "942", gender: types.GenderFemale, age: 36, heightCm: 160, educationLevel: 6, city: "Mumbai", occupation: "Teacher"})

	ageMax := 30
	if err := preferenceRepo.Upsert(ctx, nil, &types.Preference{
		ID:     uuid.New(),
		UserID: seekerID,
		AgeMax: &ageMax,
	}); err != nil {
		t.Fatalf("seed preference: %v", err)
	}

	got, err := svc.FindMatches(ctx, seekerID, 10, 0)
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("preference-filtered count: want=1 got=%d", len(got))
	}
	if got[0].Phone != "941" {
		t.Fatalf("preference match: want=941 got=%s", got[0].Phone)
	}
}

func TestFindMatchesWithoutPreferenceIsUnfiltered(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := newMatchService(t, db)

	seekerID := seedMember(t, db, memberSeed{phone: "911", gender: types.GenderMale, age: 30, heightCm: 175, educationLevel: 6, city: "Mumbai", occupation: "Engineer"})
	seedMember(t, db, memberSeed{phone: "941", gender: types.GenderFemale, age: 26, heightCm: 160, educationLevel: 6, city: "Mumbai", occupation: "Teacher"})
	seedMember(t, db, memberSeed{phone: "942", gender: types.GenderFemale, age: 36, heightCm: 160, educationLevel: 6, city: "Delhi", occupation: "Doctor"})

	got, err := svc.FindMatches(ctx, seekerID, 10, 0)
	if err != nil {
		t.Fatalf("FindMatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unfiltered count: want=2 got=%d", len(got))
	}
}
