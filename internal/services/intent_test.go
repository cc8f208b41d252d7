package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

type fakeOpenAIClient struct {
	generateCalls int
	lastSystem    string
	result        map[string]any
	err           error
}

func (f *fakeOpenAIClient) GenerateJSON(_ context.Context, system, _ string, _ string, _ map[string]any) (map[string]any, error) {
	f.generateCalls++
	f.lastSystem = system
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeOpenAIClient) GenerateJSONFromPDF(_ context.Context, system, _ string, _ string, _ string, _ map[string]any) (map[string]any, error) {
	f.generateCalls++
	f.lastSystem = system
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func buttonMessage(id string) *wa.Message {
	return &wa.Message{
		ID:   "wamid.btn",
		From: "911234567890",
		Type: wa.MessageTypeInteractive,
		Interactive: &wa.Interactive{
			Type:        "button_reply",
			ButtonReply: &wa.ButtonReply{ID: id, Title: id},
		},
	}
}

func textMessage(body string) *wa.Message {
	return &wa.Message{
		ID:   "wamid.txt",
		From: "911234567890",
		Type: wa.MessageTypeText,
		Text: &wa.Text{Body: body},
	}
}

func TestDetectMenuIntentButtonBypassesClassifier(t *testing.T) {
	fake := &fakeOpenAIClient{}
	svc := NewIntentService(newTestLogger(t), fake)

	got, err := svc.DetectMenuIntent(context.Background(), buttonMessage("FIND_MATCHES"), false)
	if err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if got.Event != EventFindMatches {
		t.Fatalf("event: want=%s got=%s", EventFindMatches, got.Event)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("confidence: want=1.0 got=%v", got.Confidence)
	}
	if fake.generateCalls != 0 {
		t.Fatalf("classifier calls for button press: want=0 got=%d", fake.generateCalls)
	}
}

func TestDetectMenuIntentTemplateButtonPayload(t *testing.T) {
	fake := &fakeOpenAIClient{}
	svc := NewIntentService(newTestLogger(t), fake)

	msg := &wa.Message{
		ID:     "wamid.tpl",
		From:   "911234567890",
		Type:   wa.MessageTypeButton,
		Button: &wa.Button{Payload: "Create New User", Text: "Create New User"},
	}
	got, err := svc.DetectMenuIntent(context.Background(), msg, true)
	if err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if got.Event != EventCreateUser {
		t.Fatalf("event: want=%s got=%s", EventCreateUser, got.Event)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("confidence: want=1.0 got=%v", got.Confidence)
	}
	if fake.generateCalls != 0 {
		t.Fatalf("classifier calls for template button: want=0 got=%d", fake.generateCalls)
	}
}

func TestDetectMenuIntentUnknownButton(t *testing.T) {
	fake := &fakeOpenAIClient{}
	svc := NewIntentService(newTestLogger(t), fake)

	got, err := svc.DetectMenuIntent(context.Background(), buttonMessage("NOT_A_BUTTON"), false)
	if err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if got.Event != EventUnknown {
		t.Fatalf("event: want=%s got=%s", EventUnknown, got.Event)
	}
	if got.Confidence >= ConfidenceThreshold {
		t.Fatalf("unknown button confidence: want<%v got=%v", ConfidenceThreshold, got.Confidence)
	}
}

func TestDetectMenuIntentTextUsesClassifier(t *testing.T) {
	fake := &fakeOpenAIClient{result: map[string]any{
		"event":      EventSetPreferences,
		"confidence": 0.92,
		"reasoning":  "user asked to set preferences",
	}}
	svc := NewIntentService(newTestLogger(t), fake)

	got, err := svc.DetectMenuIntent(context.Background(), textMessage("I want to set my preferences"), false)
	if err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if fake.generateCalls != 1 {
		t.Fatalf("classifier calls: want=1 got=%d", fake.generateCalls)
	}
	if got.Event != EventSetPreferences {
		t.Fatalf("event: want=%s got=%s", EventSetPreferences, got.Event)
	}
	if got.Confidence != 0.92 {
		t.Fatalf("confidence: want=0.92 got=%v", got.Confidence)
	}
}

func TestDetectMenuIntentPromptScopedByPrivilege(t *testing.T) {
	fake := &fakeOpenAIClient{result: map[string]any{
		"event": EventUnknown, "confidence": 0.1, "reasoning": "n/a",
	}}
	svc := NewIntentService(newTestLogger(t), fake)

	if _, err := svc.DetectMenuIntent(context.Background(), textMessage("create user"), false); err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if strings.Contains(fake.lastSystem, "CREATE_USER (high confidence)") {
		t.Fatalf("unprivileged prompt leaked admin examples")
	}

	if _, err := svc.DetectMenuIntent(context.Background(), textMessage("create user"), true); err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if !strings.Contains(fake.lastSystem, "CREATE_USER (high confidence)") {
		t.Fatalf("privileged prompt missing admin examples")
	}
}

func TestDetectMenuIntentClassifierErrorIsSurfaced(t *testing.T) {
	fake := &fakeOpenAIClient{err: context.DeadlineExceeded}
	svc := NewIntentService(newTestLogger(t), fake)

	// A collaborator failure must stay an error so the caller can ask for a
	// retry; degrading it to UNKNOWN would silently show the menu instead.
	_, err := svc.DetectMenuIntent(context.Background(), textMessage("find matches"), false)
	if err == nil {
		t.Fatalf("classifier timeout: want error got=nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("classifier timeout: want wrapped deadline error got=%v", err)
	}
}

func TestDetectMenuIntentUnsupportedType(t *testing.T) {
	fake := &fakeOpenAIClient{}
	svc := NewIntentService(newTestLogger(t), fake)

	msg := &wa.Message{ID: "wamid.doc", From: "911234567890", Type: wa.MessageTypeDocument}
	got, err := svc.DetectMenuIntent(context.Background(), msg, false)
	if err != nil {
		t.Fatalf("DetectMenuIntent: %v", err)
	}
	if got.Event != EventUnknown {
		t.Fatalf("event: want=%s got=%s", EventUnknown, got.Event)
	}
	if fake.generateCalls != 0 {
		t.Fatalf("classifier calls for document: want=0 got=%d", fake.generateCalls)
	}
}
