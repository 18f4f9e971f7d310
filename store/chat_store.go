package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"numrenohacks/models"
)

// ChatStore owns the support-chat message collection.
type ChatStore struct {
	DB *gorm.DB
}

func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{DB: db}
}

// SaveMessage persists one chat entry and returns its message ID. The
// escalation fields are only written when the message was actually flagged.
func (s *ChatStore) SaveMessage(teamID, teamName, sender, message string, escalated bool, escalationReason string) (string, error) {
	messageID, err := newMessageID()
	if err != nil {
		return "", err
	}

	entry := models.ChatMessage{
		MessageID: messageID,
		TeamID:    teamID,
		TeamName:  teamName,
		Sender:    sender,
		Message:   message,
	}
	if escalated {
		entry.IsEscalated = true
		entry.EscalationReason = escalationReason
	}

	if err := s.DB.Create(&entry).Error; err != nil {
		return "", fmt.Errorf("failed to save chat message: %w", err)
	}
	return messageID, nil
}

// History returns a team's chat, oldest first.
func (s *ChatStore) History(teamID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.DB.Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return messages, nil
}

// Escalated returns every escalated message for the admin queue, newest
// first.
func (s *ChatStore) Escalated() ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	if err := s.DB.Where("is_escalated = ?", true).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load escalated queries: %w", err)
	}
	return messages, nil
}

// Respond attaches an admin's answer to an escalated message.
func (s *ChatStore) Respond(messageID, response, adminName string) error {
	var entry models.ChatMessage
	if err := s.DB.Where("message_id = ?", messageID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load chat message: %w", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"admin_response":     response,
		"admin_responded_at": now,
		"admin_responded_by": adminName,
	}
	if err := s.DB.Model(&entry).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save admin response: %w", err)
	}
	return nil
}

func newMessageID() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate message ID: %w", err)
	}
	return fmt.Sprintf("msg-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf)), nil
}
