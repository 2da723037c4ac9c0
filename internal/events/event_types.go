package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventAccountLoggedIn   EventType = "account_logged_in"
)

// Event represents an authentication event emitted by the auth service.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	AccountID int64           `json:"account_id"`
	UserType  domain.UserType `json:"user_type"`
	Username  string          `json:"username"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload,omitempty"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Role *domain.StaffRole `json:"rol,omitempty"`
}

// AccountLoggedInPayload payload.
type AccountLoggedInPayload struct {
	LastLoginRecorded bool `json:"last_login_recorded"`
}

// NewAccountEvent builds an event for the given account.
func NewAccountEvent(eventType EventType, account *domain.Account, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		AccountID: account.ID,
		UserType:  account.UserType,
		Username:  account.Username,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
