package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted EventType = "report_submitted"
	EventReportRejected  EventType = "report_rejected"
)

// Actor identifies who triggered the event.
type Actor struct {
	Username string `json:"username"`
	District string `json:"district"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  int64       `json:"report_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	Year       int    `json:"year"`
	Quarter    string `json:"quarter"`
	Title      string `json:"title"`
	StoredFile string `json:"stored_file"`
	SizeBytes  int    `json:"size_bytes"`
}

// ReportRejectedPayload payload.
type ReportRejectedPayload struct {
	Year    int    `json:"year"`
	Quarter string `json:"quarter"`
	Code    string `json:"code"`
}
