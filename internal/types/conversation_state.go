package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Flow tags. A flow is a named multi-turn interaction; Step values are only
// meaningful relative to the flow that owns them.
const (
	FlowCreateUser             = "CREATE_USER"
	FlowUpdateBio              = "UPDATE_BIO"
	FlowRemoveUser             = "REMOVE_USER"
	FlowSetPreferences         = "SET_PREFERENCES"
	FlowFindMatches            = "FIND_MATCHES"
	FlowFindMatchesWithFilters = "FIND_MATCHES_WITH_FILTERS"
	FlowDeleteAccount          = "DELETE_ACCOUNT"
)

const (
	StepInitial              = "INITIAL"
	StepAwaitingPhone        = "AWAITING_PHONE"
	StepAwaitingPDF          = "AWAITING_PDF"
	StepAwaitingPreferences  = "AWAITING_PREFERENCES"
	StepAwaitingConfirmation = "AWAITING_CONFIRMATION"
	StepShowingMatches       = "SHOWING_MATCHES"
)

// ConversationState persists the single active flow for a phone number.
// Data is a flow-private accumulation bag, merge-patched on each Advance.
type ConversationState struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Phone     string         `gorm:"uniqueIndex;not null;column:phone" json:"phone"`
	Flow      string         `gorm:"not null;column:flow" json:"flow"`
	Step      string         `gorm:"not null;column:step" json:"step"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (ConversationState) TableName() string {
	return "conversation_state"
}

func (s *ConversationState) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
