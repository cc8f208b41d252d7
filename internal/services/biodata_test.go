package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

func biodataResult(height string) map[string]any {
	return map[string]any{
		"firstName":   "Priya",
		"lastName":    "Sharma",
		"gender":      "Female",
		"age":         27,
		"dateOfBirth": "1998-04-12",
		"city":        "Ahmedabad",
		"caste":       "Patel",
		"currentCity": "Bengaluru",
		"citizenship": "Indian",
		"education":   "B.Tech in Computer Science",
		"occupation":  "Software Engineer",
		"company":     "Infosys",
		"height":      height,
		"diet":        "Vegetarian",
		"extra":       map[string]any{"hobbies": "reading"},
	}
}

func TestExtractAndCreateProfileNormalizesFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := newTestLogger(t)
	fake := &fakeOpenAIClient{result: biodataResult(`5'4"`)}
	svc := NewBiodataService(db, log, repos.NewProfileRepo(db, log), fake)

	userID := uuid.New()
	if err := db.Create(&types.User{ID: userID, Phone: "911234567890"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	extracted, err := svc.ExtractFromPDF(ctx, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("ExtractFromPDF: %v", err)
	}
	if extracted.FirstName != "Priya" || extracted.Height != `5'4"` {
		t.Fatalf("extraction: got=%+v", extracted)
	}

	if err := svc.CreateProfile(ctx, userID, extracted); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile == nil {
		t.Fatalf("GetProfile: want profile got=nil")
	}
	if profile.HeightCm != 163 {
		t.Fatalf("HeightCm: want=163 got=%d", profile.HeightCm)
	}
	if profile.EducationLevel != 6 {
		t.Fatalf("EducationLevel for B.Tech: want=6 got=%d", profile.EducationLevel)
	}
	if profile.CurrentCity != "Bengaluru" || profile.Company != "Infosys" || profile.Diet != "Vegetarian" {
		t.Fatalf("optional fields: got=%+v", profile)
	}

	exists, err := svc.ProfileExists(ctx, userID)
	if err != nil {
		t.Fatalf("ProfileExists: %v", err)
	}
	if !exists {
		t.Fatalf("ProfileExists after create: want=true got=false")
	}
}

func TestCreateProfileRejectsUnparseableHeight(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewBiodataService(db, log, repos.NewProfileRepo(db, log), &fakeOpenAIClient{})

	userID := uuid.New()
	data := &BiodataExtraction{
		FirstName: "Priya", LastName: "Sharma", Gender: "Female", Age: 27,
		City: "Ahmedabad", Caste: "Patel", Citizenship: "Indian",
		Education: "Graduate", Occupation: "Engineer", Height: "average",
	}

	err := svc.CreateProfile(ctx, userID, data)
	if err == nil {
		t.Fatalf("CreateProfile with height %q: want error got=nil", data.Height)
	}
	if !strings.Contains(err.Error(), "height") {
		t.Fatalf("error: want height mention got=%q", err.Error())
	}

	exists, existsErr := svc.ProfileExists(ctx, userID)
	if existsErr != nil {
		t.Fatalf("ProfileExists: %v", existsErr)
	}
	if exists {
		t.Fatalf("profile after rejected write: want=absent got=present")
	}
}

func TestUpdateProfileReplacesExistingRow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewBiodataService(db, log, repos.NewProfileRepo(db, log), &fakeOpenAIClient{})

	userID := uuid.New()
	if err := db.Create(&types.User{ID: userID, Phone: "911234567890"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	first := &BiodataExtraction{
		FirstName: "Priya", LastName: "Sharma", Gender: "Female", Age: 27,
		City: "Ahmedabad", Caste: "Patel", Citizenship: "Indian",
		Education: "Graduate", Occupation: "Engineer", Height: `5'4"`,
	}
	if err := svc.CreateProfile(ctx, userID, first); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}

	updated := &BiodataExtraction{
		FirstName: "Priya", LastName: "Sharma", Gender: "Female", Age: 28,
		City: "Ahmedabad", Caste: "Patel", Citizenship: "Indian",
		Education: "MBA", Occupation: "Product Manager", Height: `5'5"`,
	}
	if err := svc.UpdateProfile(ctx, userID, updated); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	var count int64
	if err := db.Model(&types.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("profile rows: want=1 got=%d", count)
	}

	profile, err := svc.GetProfile(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Age != 28 || profile.Occupation != "Product Manager" {
		t.Fatalf("updated profile: got=%+v", profile)
	}
	if profile.HeightCm != 165 {
		t.Fatalf("updated HeightCm: want=165 got=%d", profile.HeightCm)
	}
	if profile.EducationLevel != 7 {
		t.Fatalf("updated EducationLevel for MBA: want=7 got=%d", profile.EducationLevel)
	}
}
