package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *types.Profile) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
	ExistsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	FindCandidates(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID, gender string, filter types.Filter, limit, offset int) ([]types.Candidate, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return pr.db
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error) {
	if err := pr.conn(tx).WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (pr *profileRepo) Update(ctx context.Context, tx *gorm.DB, profile *types.Profile) error {
	return pr.conn(tx).WithContext(ctx).
		Model(&types.Profile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"first_name":      profile.FirstName,
			"last_name":       profile.LastName,
			"gender":          profile.Gender,
			"age":             profile.Age,
			"date_of_birth":   profile.DateOfBirth,
			"city":            profile.City,
			"current_city":    profile.CurrentCity,
			"citizenship":     profile.Citizenship,
			"caste":           profile.Caste,
			"education":       profile.Education,
			"education_level": profile.EducationLevel,
			"occupation":      profile.Occupation,
			"company":         profile.Company,
			"height":          profile.Height,
			"height_cm":       profile.HeightCm,
			"diet":            profile.Diet,
			"extra":           profile.Extra,
		}).Error
}

func (pr *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	var results []*types.Profile
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

func (pr *profileRepo) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	var count int64
	if err := pr.conn(tx).WithContext(ctx).
		Model(&types.Profile{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *profileRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	return pr.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Profile{}).Error
}

func containsPattern(v string) string {
	return "%" + strings.ToLower(v) + "%"
}

// FindCandidates runs the conjunctive candidate query: always exclude the
// seeker and require the given gender, then one condition per set filter
// field. Results are ordered by profile id so that limit/offset pages never
// repeat or skip a row.
func (pr *profileRepo) FindCandidates(ctx context.Context, tx *gorm.DB, excludeUserID uuid.UUID, gender string, filter types.Filter, limit, offset int) ([]types.Candidate, error) {
	q := pr.conn(tx).WithContext(ctx).
		Model(&types.Profile{}).
		Select(`profile.*, "user".phone AS phone`).
		Joins(`INNER JOIN "user" ON "user".id = profile.user_id`).
		Where("profile.user_id <> ?", excludeUserID).
		Where("profile.gender = ?", gender)

	if filter.AgeMin != nil {
		q = q.Where("profile.age >= ?", *filter.AgeMin)
	}
	if filter.AgeMax != nil {
		q = q.Where("profile.age <= ?", *filter.AgeMax)
	}
	if filter.HeightMinCm != nil {
		q = q.Where("profile.height_cm >= ?", *filter.HeightMinCm)
	}
	if filter.HeightMaxCm != nil {
		q = q.Where("profile.height_cm <= ?", *filter.HeightMaxCm)
	}
	if filter.MinEducationLevel != nil {
		q = q.Where("profile.education_level >= ?", *filter.MinEducationLevel)
	}
	if filter.Occupation != nil {
		q = q.Where("LOWER(profile.occupation) LIKE ?", containsPattern(*filter.Occupation))
	}
	if filter.City != nil {
		pattern := containsPattern(*filter.City)
		q = q.Where("(LOWER(profile.city) LIKE ? OR LOWER(profile.current_city) LIKE ?)", pattern, pattern)
	}
	if filter.Citizenship != nil {
		q = q.Where("LOWER(profile.citizenship) LIKE ?", containsPattern(*filter.Citizenship))
	}
	if filter.Caste != nil {
		q = q.Where("LOWER(profile.caste) LIKE ?", containsPattern(*filter.Caste))
	}
	if filter.Diet != nil {
		q = q.Where("LOWER(profile.diet) LIKE ?", containsPattern(*filter.Diet))
	}

	var results []types.Candidate
	if err := q.Order("profile.id").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
