package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vivaahlink/vivaah-backend/internal/repos"
	"github.com/vivaahlink/vivaah-backend/internal/types"
)

func newConversationService(t *testing.T) ConversationService {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	return NewConversationService(db, log, repos.NewConversationStateRepo(db, log))
}

func TestStartFlowLastWriteWins(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewConversationService(db, log, repos.NewConversationStateRepo(db, log))

	if err := svc.StartFlow(ctx, "911234567890", types.FlowCreateUser, nil); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	if err := svc.StartFlow(ctx, "911234567890", types.FlowFindMatches, map[string]any{"matchesShown": 3}); err != nil {
		t.Fatalf("StartFlow second: %v", err)
	}

	var count int64
	if err := db.Model(&types.ConversationState{}).Where("phone = ?", "911234567890").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("state rows per phone: want=1 got=%d", count)
	}

	state, err := svc.Get(ctx, "911234567890")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Flow != types.FlowFindMatches {
		t.Fatalf("flow after restart: want=%s got=%s", types.FlowFindMatches, state.Flow)
	}
	if state.Step != types.StepInitial {
		t.Fatalf("step after restart: want=%s got=%s", types.StepInitial, state.Step)
	}
	if shown, ok := DataInt(StateData(state), "matchesShown"); !ok || shown != 3 {
		t.Fatalf("initial data matchesShown: want=3 got=%d ok=%v", shown, ok)
	}
}

func TestAdvanceMergesDataWithoutDroppingKeys(t *testing.T) {
	ctx := context.Background()
	svc := newConversationService(t)

	if err := svc.StartFlow(ctx, "911234567890", types.FlowCreateUser, map[string]any{"newUserPhone": "917779088399"}); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	if err := svc.Advance(ctx, "911234567890", types.StepAwaitingPDF, map[string]any{"newUserId": "abc"}); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	state, err := svc.Get(ctx, "911234567890")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.Step != types.StepAwaitingPDF {
		t.Fatalf("step: want=%s got=%s", types.StepAwaitingPDF, state.Step)
	}
	data := StateData(state)
	if v, _ := DataString(data, "newUserPhone"); v != "917779088399" {
		t.Fatalf("merge dropped existing key: want=917779088399 got=%q", v)
	}
	if v, _ := DataString(data, "newUserId"); v != "abc" {
		t.Fatalf("merge missed patch key: want=abc got=%q", v)
	}

	// Patching an existing key overwrites it but keeps the rest.
	if err := svc.Advance(ctx, "911234567890", types.StepAwaitingPDF, map[string]any{"newUserId": "def"}); err != nil {
		t.Fatalf("Advance overwrite: %v", err)
	}
	state, _ = svc.Get(ctx, "911234567890")
	data = StateData(state)
	if v, _ := DataString(data, "newUserId"); v != "def" {
		t.Fatalf("overwrite: want=def got=%q", v)
	}
	if v, _ := DataString(data, "newUserPhone"); v != "917779088399" {
		t.Fatalf("overwrite dropped sibling key: want=917779088399 got=%q", v)
	}
}

func TestAdvanceWithoutStateReturnsErrStateGone(t *testing.T) {
	ctx := context.Background()
	svc := newConversationService(t)

	err := svc.Advance(ctx, "919999999999", types.StepAwaitingPhone, nil)
	if !errors.Is(err, ErrStateGone) {
		t.Fatalf("Advance on missing row: want=ErrStateGone got=%v", err)
	}

	err = svc.Advance(ctx, "919999999999", types.StepAwaitingPhone, map[string]any{"k": "v"})
	if !errors.Is(err, ErrStateGone) {
		t.Fatalf("Advance with patch on missing row: want=ErrStateGone got=%v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newConversationService(t)

	if err := svc.StartFlow(ctx, "911234567890", types.FlowDeleteAccount, nil); err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	if err := svc.Clear(ctx, "911234567890"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := svc.Clear(ctx, "911234567890"); err != nil {
		t.Fatalf("Clear again: %v", err)
	}

	state, err := svc.Get(ctx, "911234567890")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != nil {
		t.Fatalf("state after clear: want=nil got=%+v", state)
	}
}
