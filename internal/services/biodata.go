package services

import (
	"context"
	"encoding/base64"
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

const biodataExtractionPrompt = `You are a biodata extraction agent for a matchmaking service.

Extract the member's biodata fields from the attached PDF. Use null for
optional fields that are genuinely absent. Gender must be exactly "Male" or
"Female". Height must be copied exactly as written in the document.`

var biodataExtractionSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"firstName":   map[string]any{"type": "string"},
		"lastName":    map[string]any{"type": "string"},
		"gender":      map[string]any{"type": "string", "enum": []string{"Male", "Female"}},
		"age":         map[string]any{"type": "integer"},
		"dateOfBirth": map[string]any{"type": "string"},
		"city":        map[string]any{"type": "string"},
		"caste":       map[string]any{"type": "string"},
		"currentCity": map[string]any{"type": []string{"string", "null"}},
		"citizenship": map[string]any{"type": "string"},
		"education":   map[string]any{"type": "string"},
		"occupation":  map[string]any{"type": "string"},
		"company":     map[string]any{"type": []string{"string", "null"}},
		"height":      map[string]any{"type": "string"},
		"diet":        map[string]any{"type": []string{"string", "null"}},
		"extra": map[string]any{
			"type":                 "object",
			"additionalProperties": true,
		},
	},
	"required": []string{
		"firstName", "lastName", "gender", "age", "dateOfBirth", "city",
		"caste", "currentCity", "citizenship", "education", "occupation",
		"company", "height", "diet", "extra",
	},
}

// BiodataExtraction is the raw model output for one biodata PDF.
type BiodataExtraction struct {
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Gender      string         `json:"gender"`
	Age         int            `json:"age"`
	DateOfBirth string         `json:"dateOfBirth"`
	City        string         `json:"city"`
	Caste       string         `json:"caste"`
	CurrentCity *string        `json:"currentCity"`
	Citizenship string         `json:"citizenship"`
	Education   string         `json:"education"`
	Occupation  string         `json:"occupation"`
	Company     *string        `json:"company"`
	Height      string         `json:"height"`
	Diet        *string        `json:"diet"`
	Extra       map[string]any `json:"extra"`
}

type BiodataService interface {
	ExtractFromPDF(ctx context.Context, pdf []byte) (*BiodataExtraction, error)
	ProfileExists(ctx context.Context, userID uuid.UUID) (bool, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error)
	CreateProfile(ctx context.Context, userID uuid.UUID, data *BiodataExtraction) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, data *BiodataExtraction) error
}

type biodataService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   repos.ProfileRepo
	openai OpenAIClient
}

func NewBiodataService(db *gorm.DB, baseLog *logger.Logger, repo repos.ProfileRepo, openai OpenAIClient) BiodataService {
	return &biodataService{
		db:     db,
		log:    baseLog.With("service", "BiodataService"),
		repo:   repo,
		openai: openai,
	}
}

func (s *biodataService) ExtractFromPDF(ctx context.Context, pdf []byte) (*BiodataExtraction, error) {
	b64 := base64.StdEncoding.EncodeToString(pdf)

	obj, err := s.openai.GenerateJSONFromPDF(
		ctx,
		biodataExtractionPrompt,
		"Extract biodata information from this PDF document according to the schema.",
		b64,
		"biodata",
		biodataExtractionSchema,
	)
	if err != nil {
		return nil, fmt.Errorf("biodata extract: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var extracted BiodataExtraction
	if err := json.Unmarshal(raw, &extracted); err != nil {
		return nil, fmt.Errorf("biodata extract decode: %w", err)
	}
	return &extracted, nil
}

// toProfile normalizes height and education into their numeric forms. A
// height that cannot be parsed rejects the whole write: a profile must never
// carry free text without its matching comparable value.
func (s *biodataService) toProfile(userID uuid.UUID, data *BiodataExtraction) (*types.Profile, error) {
	heightCm, ok := normalize.ParseHeightCm(data.Height)
	if !ok {
		return nil, fmt.Errorf("biodata extract: unparseable height %q", data.Height)
	}
	educationLevel := normalize.ParseEducationLevel(data.Education)

	extra := data.Extra
	if extra == nil {
		extra = map[string]any{}
	}
	extraRaw, err := json.Marshal(extra)
	if err != nil {
		return nil, err
	}

	profile := &types.Profile{
		ID:             uuid.New(),
		UserID:         userID,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
		Gender:         data.Gender,
		Age:            data.Age,
		DateOfBirth:    data.DateOfBirth,
		City:           data.City,
		Caste:          data.Caste,
		Citizenship:    data.Citizenship,
		Education:      data.Education,
		EducationLevel: int(educationLevel),
		Occupation:     data.Occupation,
		Height:         data.Height,
		HeightCm:       heightCm,
		Extra:          datatypes.JSON(extraRaw),
	}
	if data.CurrentCity != nil {
		profile.CurrentCity = *data.CurrentCity
	}
	if data.Company != nil {
		profile.Company = *data.Company
	}
	if data.Diet != nil {
		profile.Diet = *data.Diet
	}
	return profile, nil
}

func (s *biodataService) ProfileExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.ExistsByUserID(ctx, nil, userID)
}

func (s *biodataService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.Profile, error) {
	return s.repo.GetByUserID(ctx, nil, userID)
}

func (s *biodataService) CreateProfile(ctx context.Context, userID uuid.UUID, data *BiodataExtraction) error {
	profile, err := s.toProfile(userID, data)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(ctx, nil, profile)
	return err
}

func (s *biodataService) UpdateProfile(ctx context.Context, userID uuid.UUID, data *BiodataExtraction) error {
	profile, err := s.toProfile(userID, data)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, nil, profile)
}
