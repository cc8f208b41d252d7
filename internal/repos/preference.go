package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

type PreferenceRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Preference, error)
	Upsert(ctx context.Context, tx *gorm.DB, pref *types.Preference) error
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	repoLog := baseLog.With("repo", "PreferenceRepo")
	return &preferenceRepo{db: db, log: repoLog}
}

func (pr *preferenceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *preferenceRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Preference, error) {
	var results []*types.Preference
	if err := pr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Upsert replaces the user's stored criteria wholesale: setting preferences
// is always a full overwrite, not a merge.
func (pr *preferenceRepo) Upsert(ctx context.Context, tx *gorm.DB, pref *types.Preference) error {
	existing, err := pr.GetByUserID(ctx, tx, pref.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return pr.conn(tx).WithContext(ctx).Create(pref).Error
	}
	return pr.conn(tx).WithContext(ctx).
		Model(&types.Preference{}).
		Where("user_id = ?", pref.UserID).
		Updates(map[string]any{
			"age_min":             pref.AgeMin,
			"age_max":             pref.AgeMax,
			"height_min_cm":       pref.HeightMinCm,
			"height_max_cm":       pref.HeightMaxCm,
			"min_education_level": pref.MinEducationLevel,
			"occupation":          pref.Occupation,
			"city":                pref.City,
			"citizenship":         pref.Citizenship,
			"caste":               pref.Caste,
			"diet":                pref.Diet,
			"extra":               pref.Extra,
		}).Error
}

func (pr *preferenceRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return pr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Preference{}).Error
}
