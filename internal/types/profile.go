package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Profile is the queryable projection of a member's biodata. Height and
// education are stored twice: the free text as extracted from the PDF, and
// the normalized numeric form the match engine filters on. The pair is
// written together at create/update time; a profile never carries one
// without the other.
type Profile struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	FirstName      string         `gorm:"not null;column:first_name" json:"first_name"`
	LastName       string         `gorm:"not null;column:last_name" json:"last_name"`
	Gender         string         `gorm:"not null;column:gender" json:"gender"`
	Age            int            `gorm:"not null;column:age" json:"age"`
	DateOfBirth    string         `gorm:"column:date_of_birth" json:"date_of_birth"`
	City           string         `gorm:"not null;column:city" json:"city"`
	CurrentCity    string         `gorm:"column:current_city" json:"current_city"`
	Citizenship    string         `gorm:"not null;column:citizenship" json:"citizenship"`
	Caste          string         `gorm:"not null;column:caste" json:"caste"`
	Education      string         `gorm:"not null;column:education" json:"education"`
	EducationLevel int            `gorm:"not null;column:education_level" json:"education_level"`
	Occupation     string         `gorm:"not null;column:occupation" json:"occupation"`
	Company        string         `gorm:"column:company" json:"company"`
	Height         string         `gorm:"not null;column:height" json:"height"`
	HeightCm       int            `gorm:"not null;column:height_cm" json:"height_cm"`
	Diet           string         `gorm:"column:diet" json:"diet"`
	Extra          datatypes.JSON `gorm:"column:extra" json:"extra"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Candidate is a Profile joined with its owner's contact phone, as presented
// to a seeker.
type Candidate struct {
	Profile
	Phone string `json:"phone"`
}
