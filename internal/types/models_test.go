package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newModelDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	return db
}

// The models must migrate on both drivers, so column defaults cannot use
// Postgres-only functions; ids come from the BeforeCreate hooks instead.
func TestModelsMigrateOnSqlite(t *testing.T) {
	db := newModelDB(t)
	if err := db.AutoMigrate(&User{}, &Profile{}, &Preference{}, &ConversationState{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
}

func TestBeforeCreateFillsMissingIDs(t *testing.T) {
	db := newModelDB(t)
	if err := db.AutoMigrate(&User{}, &Profile{}, &Preference{}, &ConversationState{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	user := &User{Phone: "911234567890"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("user id: want generated got=%v", user.ID)
	}

	profile := &Profile{
		UserID: user.ID, FirstName: "Test", LastName: "User",
		Gender: GenderFemale, Age: 27, City: "Mumbai", Citizenship: "Indian",
		Caste: "Patel", Education: "Graduate", EducationLevel: 6,
		Occupation: "Teacher", Height: `5'4"`, HeightCm: 163,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if profile.ID == uuid.Nil {
		t.Fatalf("profile id: want generated got=%v", profile.ID)
	}

	pref := &Preference{UserID: user.ID}
	if err := db.Create(pref).Error; err != nil {
		t.Fatalf("create preference: %v", err)
	}
	if pref.ID == uuid.Nil {
		t.Fatalf("preference id: want generated got=%v", pref.ID)
	}

	state := &ConversationState{Phone: user.Phone, Flow: FlowFindMatches, Step: StepInitial}
	if err := db.Create(state).Error; err != nil {
		t.Fatalf("create state: %v", err)
	}
	if state.ID == uuid.Nil {
		t.Fatalf("state id: want generated got=%v", state.ID)
	}

	// An id set by the caller is kept.
	fixed := uuid.New()
	other := &User{ID: fixed, Phone: "919999999999"}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("create user with id: %v", err)
	}
	if other.ID != fixed {
		t.Fatalf("explicit id: want=%v got=%v", fixed, other.ID)
	}
}
