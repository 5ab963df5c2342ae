package orm

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// ToolCall is one tool invocation made while answering a turn.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// TraceRecord is one conversation turn in the append-only observability
// log: when it happened, what was asked, which tools ran (in order),
// and what was answered.
type TraceRecord struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
	RequestID string    `gorm:"column:request_id"`
	Query     string    `gorm:"column:query"`
	ToolCalls string    `gorm:"column:tool_calls"` // JSON array of ToolCall
	Answer    string    `gorm:"column:answer"`
}

// TableName maps to the traces table
func (TraceRecord) TableName() string { return "traces" }

// AppendTrace writes one turn to the trace log. Records are only ever
// appended, never updated.
func AppendTrace(db *gorm.DB, requestID, query string, calls []ToolCall, answer string) error {
	payload, err := json.Marshal(calls)
	if err != nil {
		return err
	}
	rec := TraceRecord{
		CreatedAt: time.Now(),
		RequestID: requestID,
		Query:     query,
		ToolCalls: string(payload),
		Answer:    answer,
	}
	return db.Create(&rec).Error
}
