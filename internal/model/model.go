package model

import (
	"time"
)

// MethodCall is one journaled org.ofono method call.
type MethodCall struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"index;not null" json:"path"`
	Interface string    `gorm:"not null" json:"interface"`
	Method    string    `gorm:"index;not null" json:"method"`
	Args      string    `json:"args"`            // JSON array
	Error     string    `json:"error,omitempty"` // D-Bus error name, empty on success
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// SignalRecord is one journaled emitted signal.
type SignalRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"index;not null" json:"path"`
	Interface string    `gorm:"not null" json:"interface"`
	Member    string    `gorm:"index;not null" json:"member"`
	Body      string    `json:"body"` // JSON array
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type Webhook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	URL       string    `gorm:"not null" json:"url"`
	Member    string    `gorm:"index" json:"member"`     // signal member filter, empty matches all
	Platform  string    `json:"platform"`                // telegram, slack, generic
	ChannelID string    `json:"channel_id"`              // For Telegram
	Template  string    `json:"template"`                // "{{.Member}} on {{.Path}}"
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}
