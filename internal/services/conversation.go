package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

// ErrStorageUnavailable wraps any storage failure inside the state store so
// the processor can tell "database down" apart from ordinary flow errors and
// ask the user to resend.
var ErrStorageUnavailable = errors.New("conversation storage unavailable")

// ErrStateGone is returned by Advance when the state row vanished between
// dispatch and transition (racing clear). Flows treat it as flow-ended.
var ErrStateGone = errors.New("conversation state gone")

// ConversationService owns the single active flow per phone number.
type ConversationService interface {
	Get(ctx context.Context, phone string) (*types.ConversationState, error)
	StartFlow(ctx context.Context, phone, flow string, initialData map[string]any) error
	Advance(ctx context.Context, phone, step string, dataPatch map[string]any) error
	Clear(ctx context.Context, phone string) error
}

type conversationService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.ConversationStateRepo
}

func NewConversationService(db *gorm.DB, baseLog *logger.Logger, repo repos.ConversationStateRepo) ConversationService {
	return &conversationService{
		db:   db,
		log:  baseLog.With("service", "ConversationService"),
		repo: repo,
	}
}

func (s *conversationService) Get(ctx context.Context, phone string) (*types.ConversationState, error) {
	state, err := s.repo.GetByPhone(ctx, nil, phone)
	if err != nil {
		s.log.Error("Failed to read conversation state", "phone", phone, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return state, nil
}

func (s *conversationService) StartFlow(ctx context.Context, phone, flow string, initialData map[string]any) error {
	if initialData == nil {
		initialData = map[string]any{}
	}
	raw, err := json.Marshal(initialData)
	if err != nil {
		return err
	}
	state := &types.ConversationState{
		ID:    uuid.New(),
		Phone: phone,
		Flow:  flow,
		Step:  types.StepInitial,
		Data:  datatypes.JSON(raw),
	}
	if err := s.repo.Replace(ctx, nil, state); err != nil {
		s.log.Error("Failed to start flow", "phone", phone, "flow", flow, "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	s.log.Debug("Flow started", "phone", phone, "flow", flow)
	return nil
}

// Advance moves the state to the next step and shallow-merges dataPatch into
// the accumulated Data bag. Keys absent from the patch are kept.
func (s *conversationService) Advance(ctx context.Context, phone, step string, dataPatch map[string]any) error {
	updates := map[string]any{
		"step":       step,
		"updated_at": time.Now().UTC(),
	}

	if len(dataPatch) > 0 {
		current, err := s.repo.GetByPhone(ctx, nil, phone)
		if err != nil {
			s.log.Error("Failed to read state for advance", "phone", phone, "error", err)
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		if current == nil {
			return ErrStateGone
		}
		patchRaw, err := json.Marshal(dataPatch)
		if err != nil {
			return err
		}
		merged, err := mergeJSONObjects(json.RawMessage(current.Data), patchRaw)
		if err != nil {
			return err
		}
		updates["data"] = datatypes.JSON(merged)
	}

	affected, err := s.repo.UpdateFields(ctx, nil, phone, updates)
	if err != nil {
		s.log.Error("Failed to advance conversation step", "phone", phone, "step", step, "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if affected == 0 {
		return ErrStateGone
	}
	return nil
}

func (s *conversationService) Clear(ctx context.Context, phone string) error {
	if err := s.repo.DeleteByPhone(ctx, nil, phone); err != nil {
		s.log.Error("Failed to clear conversation state", "phone", phone, "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func mergeJSONObjects(base, patch json.RawMessage) (json.RawMessage, error) {
	if len(patch) == 0 {
		if len(base) == 0 {
			return nil, nil
		}
		out := make(json.RawMessage, len(base))
		copy(out, base)
		return out, nil
	}

	var patchObj map[string]any
	if err := json.Unmarshal(patch, &patchObj); err != nil {
		return nil, err
	}
	if patchObj == nil {
		patchObj = map[string]any{}
	}

	var baseObj map[string]any
	if len(base) > 0 {
		if err := json.Unmarshal(base, &baseObj); err != nil {
			return nil, err
		}
	}
	if baseObj == nil {
		baseObj = map[string]any{}
	}

	for k, v := range patchObj {
		baseObj[k] = v
	}

	merged, err := json.Marshal(baseObj)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(merged), nil
}

// StateData decodes the accumulated Data bag of a state row.
func StateData(state *types.ConversationState) map[string]any {
	out := map[string]any{}
	if state == nil || len(state.Data) == 0 {
		return out
	}
	if err := json.Unmarshal(state.Data, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// DataInt reads an integer out of a decoded Data bag; JSON numbers arrive as
// float64.
func DataInt(data map[string]any, key string) (int, bool) {
	v, ok := data[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// DataString reads a string out of a decoded Data bag.
func DataString(data map[string]any, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
