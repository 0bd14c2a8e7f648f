package amqp

import (
	"encoding/json"
	"time"
)

const (
	RoutingReportGenerated = "report.generated"
	RoutingLedgerChanged   = "ledger.changed"
)

// ReportGeneratedMessage is the audit event published after a report has
// been served.
type ReportGeneratedMessage struct {
	UserID      int64     `json:"user_id"`
	ReportType  string    `json:"report_type"`
	Period      string    `json:"period,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

func NewReportGeneratedMessage(userID int64, reportType, period string, at time.Time) *ReportGeneratedMessage {
	return &ReportGeneratedMessage{
		UserID:      userID,
		ReportType:  reportType,
		Period:      period,
		GeneratedAt: at.UTC(),
	}
}

func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// LedgerChangedMessage is published by the CRUD side whenever a user's
// transactions or goals change. Only the user id matters to consumers here.
type LedgerChangedMessage struct {
	UserID    int64     `json:"user_id"`
	Entity    string    `json:"entity,omitempty"`
	Action    string    `json:"action,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
