package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat message senders.
const (
	SenderTeam  = "team"
	SenderBot   = "bot"
	SenderAdmin = "admin"
)

// ChatMessage is one entry in a team's support chat. Escalated messages
// are surfaced in the admin console until an admin responds.
type ChatMessage struct {
	gorm.Model

	MessageID string `gorm:"uniqueIndex;not null" json:"message_id"`
	TeamID    string `gorm:"not null;index" json:"team_id"`
	TeamName  string `json:"team_name"`

	Sender  string `gorm:"not null" json:"sender"` // team, bot, admin
	Message string `gorm:"type:text;not null" json:"message"`

	IsEscalated      bool   `gorm:"default:false;index" json:"is_escalated"`
	EscalationReason string `gorm:"type:text" json:"escalation_reason,omitempty"`

	AdminResponse    string     `gorm:"type:text" json:"admin_response,omitempty"`
	AdminRespondedAt *time.Time `json:"admin_responded_at,omitempty"`
	AdminRespondedBy string     `json:"admin_responded_by,omitempty"`
}
