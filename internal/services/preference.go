package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/normalize"
	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

const preferenceExtractionPrompt = `You are a preference extraction agent for a matchmaking service.

Extract partner preferences from the user's free-text message. Every field is
optional: emit null for anything the user did not mention. Do not guess.

Fields:
- ageMin, ageMax: integer age bounds, if mentioned
- heightMin, heightMax: height bounds exactly as written (e.g. "5'4\"", "165 cm")
- education: educational qualification preference (e.g. "Graduate", "MBA")
- occupation: profession preference
- city: city or location preference
- citizenship: nationality preference
- caste: caste or community preference
- diet: dietary preference (e.g. "Vegetarian")
- otherPreferences: object holding anything else (salary, hobbies, family background, ...)`

var preferenceExtractionSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"ageMin":      map[string]any{"type": []string{"integer", "null"}},
		"ageMax":      map[string]any{"type": []string{"integer", "null"}},
		"heightMin":   map[string]any{"type": []string{"string", "null"}},
		"heightMax":   map[string]any{"type": []string{"string", "null"}},
		"education":   map[string]any{"type": []string{"string", "null"}},
		"occupation":  map[string]any{"type": []string{"string", "null"}},
		"city":        map[string]any{"type": []string{"string", "null"}},
		"citizenship": map[string]any{"type": []string{"string", "null"}},
		"caste":       map[string]any{"type": []string{"string", "null"}},
		"diet":        map[string]any{"type": []string{"string", "null"}},
		"otherPreferences": map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		},
	},
	"required": []string{
		"ageMin", "ageMax", "heightMin", "heightMax", "education",
		"occupation", "city", "citizenship", "caste", "diet", "otherPreferences",
	},
}

// PreferenceExtraction is the raw model output before normalization.
type PreferenceExtraction struct {
	AgeMin           *int           `json:"ageMin"`
	AgeMax           *int           `json:"ageMax"`
	HeightMin        *string        `json:"heightMin"`
	HeightMax        *string        `json:"heightMax"`
	Education        *string        `json:"education"`
	Occupation       *string        `json:"occupation"`
	City             *string        `json:"city"`
	Citizenship      *string        `json:"citizenship"`
	Caste            *string        `json:"caste"`
	Diet             *string        `json:"diet"`
	OtherPreferences map[string]any `json:"otherPreferences"`
}

type PreferenceService interface {
	// ExtractFilter turns free text into a normalized transient filter plus
	// the unmapped leftovers.
	ExtractFilter(ctx context.Context, text string) (types.Filter, map[string]any, error)
	Save(ctx context.Context, userID uuid.UUID, filter types.Filter, extra map[string]any) error
	Get(ctx context.Context, userID uuid.UUID) (*types.Preference, error)
}

type preferenceService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.PreferenceRepo
	openai OpenAIClient
}

func NewPreferenceService(db *gorm.DB, baseLog *logger.Logger, repo repos.PreferenceRepo, openai OpenAIClient) PreferenceService {
	return &preferenceService{
		db:     db,
		log:    baseLog.With("service", "PreferenceService"),
		repo:   repo,
		openai: openai,
	}
}

func (s *preferenceService) ExtractFilter(ctx context.Context, text string) (types.Filter, map[string]any, error) {
	obj, err := s.openai.GenerateJSON(ctx, preferenceExtractionPrompt, text, "partner_preferences", preferenceExtractionSchema)
	if err != nil {
		return types.Filter{}, nil, fmt.Errorf("preference extraction: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return types.Filter{}, nil, err
	}
	var extracted PreferenceExtraction
	if err := json.Unmarshal(raw, &extracted); err != nil {
		return types.Filter{}, nil, fmt.Errorf("preference extraction decode: %w", err)
	}

	filter := s.normalize(extracted)
	return filter, extracted.OtherPreferences, nil
}

// normalize converts the model's free-text height and education into the
// comparable numeric forms. Heights that fail to parse are dropped rather
// than guessed; a preference is optional, so dropping is safe.
func (s *preferenceService) normalize(e PreferenceExtraction) types.Filter {
	filter := types.Filter{
		AgeMin:      e.AgeMin,
		AgeMax:      e.AgeMax,
		Occupation:  e.Occupation,
		City:        e.City,
		Citizenship: e.Citizenship,
		Caste:       e.Caste,
		Diet:        e.Diet,
	}

	if e.HeightMin != nil {
		if cm, ok := normalize.ParseHeightCm(*e.HeightMin); ok {
			filter.HeightMinCm = &cm
		} else {
			s.log.Warn("Could not normalize minimum height, dropping", "raw", *e.HeightMin)
		}
	}
	if e.HeightMax != nil {
		if cm, ok := normalize.ParseHeightCm(*e.HeightMax); ok {
			filter.HeightMaxCm = &cm
		} else {
			s.log.Warn("Could not normalize maximum height, dropping", "raw", *e.HeightMax)
		}
	}
	if e.Education != nil && *e.Education != "" {
		level := int(normalize.ParseEducationLevel(*e.Education))
		filter.MinEducationLevel = &level
	}

	return filter
}

func (s *preferenceService) Save(ctx context.Context, userID uuid.UUID, filter types.Filter, extra map[string]any) error {
	if extra == nil {
		extra = map[string]any{}
	}
	extraRaw, err := json.Marshal(extra)
	if err != nil {
		return err
	}
	pref := &types.Preference{
		ID:                uuid.New(),
		UserID:            userID,
		AgeMin:            filter.AgeMin,
		AgeMax:            filter.AgeMax,
		HeightMinCm:       filter.HeightMinCm,
		HeightMaxCm:       filter.HeightMaxCm,
		MinEducationLevel: filter.MinEducationLevel,
		Occupation:        filter.Occupation,
		City:              filter.City,
		Citizenship:       filter.Citizenship,
		Caste:             filter.Caste,
		Diet:              filter.Diet,
		Extra:             datatypes.JSON(extraRaw),
	}
	return s.repo.Upsert(ctx, nil, pref)
}

func (s *preferenceService) Get(ctx context.Context, userID uuid.UUID) (*types.Preference, error) {
	return s.repo.GetByUserID(ctx, nil, userID)
}
