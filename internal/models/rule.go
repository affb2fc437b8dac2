// Package models defines the GORM entities shared by the store, relay,
// and API layers.
package models

import "time"

// Time-filter modes for a ForwardRule. The live path only distinguishes
// TimeFilterRange; the remaining modes drive historical replay windows.
const (
	TimeFilterAfterStart  = "after_start"
	TimeFilterRange       = "time_range"
	TimeFilterFromTime    = "from_time"
	TimeFilterTodayOnly   = "today_only"
	TimeFilterAllMessages = "all_messages"
)

// Client kinds.
const (
	ClientKindUser = "user"
	ClientKindBot  = "bot"
)

// ForwardRule is one source-to-target forwarding policy. Bools carry no
// column defaults so an explicit false survives the insert; use
// DefaultForwardRule for the documented defaults.
type ForwardRule struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	SourceChatID   string `gorm:"size:32;not null;index" json:"source_chat_id"`
	SourceChatName string `gorm:"size:256" json:"source_chat_name"`
	TargetChatID   string `gorm:"size:32;not null" json:"target_chat_id"`
	TargetChatName string `gorm:"size:256" json:"target_chat_name"`
	IsActive       bool   `gorm:"index" json:"is_active"`

	// Per-content-type gates. Stickers are opt-in, everything else opt-out.
	EnableText      bool `json:"enable_text"`
	EnablePhoto     bool `json:"enable_photo"`
	EnableVideo     bool `json:"enable_video"`
	EnableDocument  bool `json:"enable_document"`
	EnableAudio     bool `json:"enable_audio"`
	EnableVoice     bool `json:"enable_voice"`
	EnableSticker   bool `json:"enable_sticker"`
	EnableAnimation bool `json:"enable_animation"`
	EnableWebpage   bool `json:"enable_webpage"`

	EnableKeywordFilter bool `json:"enable_keyword_filter"`
	EnableRegexReplace  bool `json:"enable_regex_replace"`
	EnableLinkPreview   bool `json:"enable_link_preview"`

	ForwardDelay     int `json:"forward_delay"`
	MaxMessageLength int `json:"max_message_length"`

	TimeFilterType string     `gorm:"size:16" json:"time_filter_type"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`

	// Owning identity: which session worker forwards for this rule.
	ClientID   string `gorm:"size:64" json:"client_id"`
	ClientType string `gorm:"size:8" json:"client_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Keywords     []Keyword     `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"keywords"`
	ReplaceRules []ReplaceRule `gorm:"foreignKey:RuleID;constraint:OnDelete:CASCADE" json:"replace_rules"`
}

// DefaultForwardRule returns a rule with the documented defaults: active,
// every content type except stickers enabled, link previews on, filters off,
// 4096-rune length cap, after_start time filter.
func DefaultForwardRule() ForwardRule {
	return ForwardRule{
		IsActive: true,

		EnableText:      true,
		EnablePhoto:     true,
		EnableVideo:     true,
		EnableDocument:  true,
		EnableAudio:     true,
		EnableVoice:     true,
		EnableAnimation: true,
		EnableWebpage:   true,

		EnableLinkPreview: true,
		MaxMessageLength:  4096,
		TimeFilterType:    TimeFilterAfterStart,
		ClientType:        ClientKindUser,
	}
}

// Keyword is an include/exclude filter entry belonging to one ForwardRule.
type Keyword struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleID        uint   `gorm:"not null;index" json:"rule_id"`
	Keyword       string `gorm:"size:256;not null" json:"keyword"`
	IsRegex       bool   `json:"is_regex"`
	IsExclude     bool   `json:"is_exclude"`
	CaseSensitive bool   `json:"case_sensitive"`

	CreatedAt time.Time `json:"created_at"`
}

// ReplaceRule is a prioritized regex substitution belonging to one ForwardRule.
// Lower priority runs first; each rule's output feeds the next.
type ReplaceRule struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RuleID      uint   `gorm:"not null;index" json:"rule_id"`
	Name        string `gorm:"size:128" json:"name"`
	Pattern     string `gorm:"size:512;not null" json:"pattern"`
	Replacement string `gorm:"size:512" json:"replacement"`
	Priority    int    `json:"priority"`
	IsRegex     bool   `json:"is_regex"`
	IsActive    bool   `json:"is_active"`
	IsGlobal    bool   `json:"is_global"`

	CreatedAt time.Time `json:"created_at"`
}

/// DefaultReplaceRule returns a substitution with the documented defaults:
// active, regex, global.
func DefaultReplaceRule() ReplaceRule {
	return ReplaceRule{IsRegex: true, IsActive: true, IsGlobal: true}
}
