package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ehuza/internal/export"
)

// ExportRequestMessage asks the worker to append one exported transaction
// view to the configured Google Sheet. The rows travel inside the message:
// the frontend holds no ledger of its own the worker could re-read, and the
// export scope is pinned to what the user saw when they clicked export.
type ExportRequestMessage struct {
	RequestID   string       `json:"requestId"`
	UserID      string       `json:"userId"`
	Rows        []export.Row `json:"rows"`
	RequestedAt time.Time    `json:"requestedAt"`
}

// NewExportRequestMessage creates an export message for the given view rows.
func NewExportRequestMessage(userID string, rows []export.Row) *ExportRequestMessage {
	return &ExportRequestMessage{
		RequestID:   uuid.NewString(),
		UserID:      userID,
		Rows:        rows,
		RequestedAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportRequestMessageFromJSON creates a message from JSON bytes
func ExportRequestMessageFromJSON(data []byte) (*ExportRequestMessage, error) {
	var msg ExportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
