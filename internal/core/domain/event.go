package domain

import "time"

// Event types published on the in-process bus.
const (
	EventAPIRequest    = "api.request"
	EventAPIResponse   = "api.response"
	EventUserCreated   = "user.created"
	EventUserUpdated   = "user.updated"
	EventUserDeleted   = "user.deleted"
	EventDataFetched   = "data.fetched"
	EventErrorOccurred = "error.occurred"
	EventAuthAttempt   = "auth.attempt"
	EventAuthLogin     = "auth.login"
	EventAuthLogout    = "auth.logout"
)

// Event is a single bus message. CorrelationID is the originating request id.
type Event struct {
	Type          string    `json:"type"`
	Data          any       `json:"data"`
	Timestamp     time.Time `json:"timestamp"`
	Source        string    `json:"source"`
	CorrelationID string    `json:"correlationId,omitempty"`
}
