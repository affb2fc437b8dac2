package models

import "time"

// Forwarding outcome statuses recorded in MessageLog.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// MessageLog records one forwarding attempt. The (SourceMessageID,
// SourceChatID, RuleName, Status) tuple is the dedup key for replay.
type MessageLog struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleID          uint   `gorm:"index" json:"rule_id"`
	RuleName        string `gorm:"size:128;index:idx_dedup" json:"rule_name"`
	SourceMessageID int64  `gorm:"index:idx_dedup" json:"source_message_id"`
	SourceChatID    string `gorm:"size:32;index:idx_dedup" json:"source_chat_id"`
	SourceChatName  string `gorm:"size:256" json:"source_chat_name"`
	TargetChatID    string `gorm:"size:32" json:"target_chat_id"`
	TargetChatName  string `gorm:"size:256" json:"target_chat_name"`
	TargetMessageID int64  `json:"target_message_id"`
	OriginalText    string `gorm:"size:4096" json:"original_text"`
	ProcessedText   string `gorm:"size:4096" json:"processed_text"`
	MediaType       string `gorm:"size:16" json:"media_type"`
	Status          string `gorm:"size:16;index:idx_dedup" json:"status"`
	ErrorMessage    string `gorm:"size:1024" json:"error_message"`
	// ProcessingTime is the send latency in milliseconds.
	ProcessingTime int64 `json:"processing_time"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
