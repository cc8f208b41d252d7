package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vivaahlink/vivaah-backend/internal/logger"
	"github.com/vivaahlink/vivaah-backend/internal/wa"
)

// Intent events. Global events may fire at any point in a conversation; flow
// events start a new flow from the menu.
const (
	EventEndFlow  = "END_FLOW"
	EventHelp     = "HELP"
	EventGreeting = "GREETING"

	EventSetPreferences         = "SET_PREFERENCES"
	EventFindMatches            = "FIND_MATCHES"
	EventFindMatchesWithFilters = "FIND_MATCHES_WITH_FILTERS"
	EventViewBio                = "VIEW_BIO"
	EventDeleteAccount          = "DELETE_ACCOUNT"

	EventCreateUser = "CREATE_USER"
	EventUpdateBio  = "UPDATE_BIO"
	EventRemoveUser = "REMOVE_USER"

	EventUnknown = "UNKNOWN"
)

// DetectedIntent is a classified message with a confidence in [0,1]. The
// processor acts on an intent only at confidence 0.6 or above.
type DetectedIntent struct {
	Event      string  `json:"event"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ConfidenceThreshold is the minimum confidence for an intent to be acted on.
const ConfidenceThreshold = 0.6

// buttonEvents maps interactive reply IDs and template button payloads to
// their events. Button presses are unambiguous and skip the classifier.
var buttonEvents = map[string]string{
	"SET_PREFERENCES": EventSetPreferences,
	"FIND_MATCHES":    EventFindMatches,
	"VIEW_BIO":        EventViewBio,
	"DELETE_ACCOUNT":  EventDeleteAccount,

	// Admin template buttons carry their display text as payload.
	"Create New User": EventCreateUser,
	"Update Biodata":  EventUpdateBio,
	"Remove Biodata":  EventRemoveUser,
}

var intentDetectionSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"event": map[string]any{
			"type": "string",
			"enum": []string{
				EventEndFlow, EventHelp, EventGreeting,
				EventSetPreferences, EventFindMatches, EventFindMatchesWithFilters,
				EventViewBio, EventDeleteAccount,
				EventCreateUser, EventUpdateBio, EventRemoveUser,
				EventUnknown,
			},
			"description": "The detected intent event from the user's message",
		},
		"confidence": map[string]any{
			"type":        "number",
			"description": "Confidence score between 0 and 1. Use values below 0.6 for ambiguous or unclear intents.",
		},
		"reasoning": map[string]any{
			"type":        "string",
			"description": "Brief explanation of why this intent was chosen (1-2 sentences)",
		},
	},
	"required": []string{"event", "confidence", "reasoning"},
}

type IntentService interface {
	// DetectMenuIntent classifies a menu-level message. A non-nil error means
	// the collaborator failed (timeout, transport, malformed output) and the
	// message should be retried; it is never an UNKNOWN classification.
	DetectMenuIntent(ctx context.Context, msg *wa.Message, isAdmin bool) (DetectedIntent, error)
}

type intentService struct {
	log    *logger.Logger
	openai OpenAIClient
}

func NewIntentService(baseLog *logger.Logger, openai OpenAIClient) IntentService {
	return &intentService{
		log:    baseLog.With("service", "IntentService"),
		openai: openai,
	}
}

// DetectMenuIntent classifies a message at the menu level, when no flow is in
// progress. Button presses resolve by table lookup at full confidence; free
// text goes through the model. Collaborator failures are returned as errors,
// never degraded to an UNKNOWN result.
func (s *intentService) DetectMenuIntent(ctx context.Context, msg *wa.Message, isAdmin bool) (DetectedIntent, error) {
	if id, ok := msg.ReplyID(); ok {
		return s.mapButtonEvent(id), nil
	}
	if text, ok := msg.TextBody(); ok {
		return s.detectTextIntent(ctx, text, isAdmin)
	}
	return DetectedIntent{
		Event:      EventUnknown,
		Confidence: 0.1,
		Reasoning:  "Unsupported message type (not text or button)",
	}, nil
}

func (s *intentService) mapButtonEvent(buttonID string) DetectedIntent {
	if event, ok := buttonEvents[buttonID]; ok {
		return DetectedIntent{
			Event:      event,
			Confidence: 1.0,
			Reasoning:  fmt.Sprintf("Direct button click: %s", buttonID),
		}
	}
	return DetectedIntent{
		Event:      EventUnknown,
		Confidence: 0.1,
		Reasoning:  fmt.Sprintf("Unknown button ID: %s", buttonID),
	}
}

func (s *intentService) detectTextIntent(ctx context.Context, text string, isAdmin bool) (DetectedIntent, error) {
	prompt := buildMenuIntentPrompt(text, isAdmin)

	obj, err := s.openai.GenerateJSON(ctx, prompt, text, "intent_detection", intentDetectionSchema)
	if err != nil {
		s.log.Error("intent detection failed", "error", err)
		return DetectedIntent{}, fmt.Errorf("intent detection: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return DetectedIntent{}, fmt.Errorf("intent detection: %w", err)
	}
	var intent DetectedIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		s.log.Error("intent decode failed", "error", err)
		return DetectedIntent{}, fmt.Errorf("intent detection decode: %w", err)
	}

	s.log.Info("intent detected",
		"message", text,
		"event", intent.Event,
		"confidence", intent.Confidence,
		"isAdmin", isAdmin,
	)
	return intent, nil
}

const userFlowExamples = `
**Flow Examples**:
- "I want to set my preferences" -> SET_PREFERENCES (high confidence)
- "edit my preferences" -> SET_PREFERENCES (high confidence)
- "update my partner preferences" -> SET_PREFERENCES (high confidence)
- "find matches" -> FIND_MATCHES (high confidence)
- "show me some matches" -> FIND_MATCHES (high confidence)
- "looking for matches" -> FIND_MATCHES (high confidence)
- "find me matches with age between 25 to 30" -> FIND_MATCHES_WITH_FILTERS (high confidence)
- "show matches height 5'5 and engineer" -> FIND_MATCHES_WITH_FILTERS (high confidence)
- "find profiles age 28 to 35 from Mumbai" -> FIND_MATCHES_WITH_FILTERS (high confidence)
- "view my bio" -> VIEW_BIO (high confidence)
- "see my profile" -> VIEW_BIO (high confidence)
- "show my biodata" -> VIEW_BIO (high confidence)
- "delete my account" -> DELETE_ACCOUNT (high confidence)
- "remove my data" -> DELETE_ACCOUNT (high confidence)
`

const adminFlowExamples = userFlowExamples + `
**Admin Flow Examples**:
- "create user" -> CREATE_USER (high confidence)
- "add new user" -> CREATE_USER (high confidence)
- "register someone" -> CREATE_USER (high confidence)
- "update biodata" -> UPDATE_BIO (high confidence)
- "edit user bio" -> UPDATE_BIO (high confidence)
- "change someone's profile" -> UPDATE_BIO (high confidence)
- "remove user" -> REMOVE_USER (high confidence)
- "delete user" -> REMOVE_USER (high confidence)
`

func buildMenuIntentPrompt(messageText string, isAdmin bool) string {
	flowExamples := userFlowExamples
	if isAdmin {
		flowExamples = adminFlowExamples
	}

	return fmt.Sprintf(`You are an intent detection agent for a WhatsApp matchmaking bot.

Your task is to detect the user's intent from their message and classify it into one of the predefined events.

IMPORTANT RULES:
- You are ONLY classifying messages at the MENU LEVEL (when no active conversation flow is in progress)
- Users can start flows using natural language instead of clicking buttons
- Always provide a confidence score between 0 and 1
- Use confidence < 0.6 for ambiguous or unclear intents
- Use confidence >= 0.8 for clear, unambiguous intents
- If the message doesn't match any event clearly, use "UNKNOWN" with low confidence
- Provide brief reasoning (1-2 sentences) for your classification

AVAILABLE EVENTS:

**Global Events** (always available):
- END_FLOW: User wants to cancel/stop/end the current interaction
  Examples: "cancel", "stop", "end", "never mind"

- HELP: User wants to see available options or get help
  Examples: "help", "what can I do", "show menu", "options"

- GREETING: User is greeting the bot
  Examples: "hello", "hi", "hey", "good morning"

**Flow Initialization Events** (start a new conversation flow):
%s
**Ambiguous Examples** (use UNKNOWN with low confidence):
- "yes" -> UNKNOWN (0.2 - needs context)
- "no" -> UNKNOWN (0.2 - needs context)
- "ok" -> UNKNOWN (0.3 - unclear intent)
- Random text or gibberish -> UNKNOWN (0.1)

USER'S MESSAGE:
"%s"

Classify this message into the appropriate event with confidence score and reasoning.
`, flowExamples, messageText)
}
