package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Preference is the persisted form of a member's match criteria, one row per
// user. A nil field means "no constraint", never "match empty".
type Preference struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	AgeMin            *int           `gorm:"column:age_min" json:"age_min"`
	AgeMax            *int           `gorm:"column:age_max" json:"age_max"`
	HeightMinCm       *int           `gorm:"column:height_min_cm" json:"height_min_cm"`
	HeightMaxCm       *int           `gorm:"column:height_max_cm" json:"height_max_cm"`
	MinEducationLevel *int           `gorm:"column:min_education_level" json:"min_education_level"`
	Occupation        *string        `gorm:"column:occupation" json:"occupation"`
	City              *string        `gorm:"column:city" json:"city"`
	Citizenship       *string        `gorm:"column:citizenship" json:"citizenship"`
	Caste             *string        `gorm:"column:caste" json:"caste"`
	Diet              *string        `gorm:"column:diet" json:"diet"`
	Extra             datatypes.JSON `gorm:"column:extra" json:"extra"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
}

func (Preference) TableName() string {
	return "preference"
}

func (p *Preference) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Filter carries the same criteria as Preference but lives for a single
// request. It is built from an ad-hoc text query or from a stored Preference
// row, handed to the match engine, and discarded.
type Filter struct {
	AgeMin            *int
	AgeMax            *int
	HeightMinCm       *int
	HeightMaxCm       *int
	MinEducationLevel *int
	Occupation        *string
	City              *string
	Citizenship       *string
	Caste             *string
	Diet              *string
}

// IsEmpty reports whether no constraint is set at all.
func (f Filter) IsEmpty() bool {
	return f.AgeMin == nil && f.AgeMax == nil &&
		f.HeightMinCm == nil && f.HeightMaxCm == nil &&
		f.MinEducationLevel == nil && f.Occupation == nil &&
		f.City == nil && f.Citizenship == nil &&
		f.Caste == nil && f.Diet == nil
}

// FilterFromPreference lifts a stored preference row into a transient filter.
func FilterFromPreference(p *Preference) Filter {
	if p == nil {
		return Filter{}
	}
	return Filter{
		AgeMin:            p.AgeMin,
		AgeMax:            p.AgeMax,
		HeightMinCm:       p.HeightMinCm,
		HeightMaxCm:       p.HeightMaxCm,
		MinEducationLevel: p.MinEducationLevel,
		Occupation:        p.Occupation,
		City:              p.City,
		Citizenship:       p.Citizenship,
		Caste:             p.Caste,
		Diet:              p.Diet,
	}
}
