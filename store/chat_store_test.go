package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numrenohacks/models"
)

func newTestChatStore(t *testing.T) *ChatStore {
	t.Helper()
	return NewChatStore(newTestDB(t))
}

func TestSaveMessageGeneratesID(t *testing.T) {
	s := newTestChatStore(t)

	id, err := s.SaveMessage("NH-2025-0001", "Jingle Coders", models.SenderTeam, "When is the deadline?", false, "")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^msg-\d+-[0-9a-f]{10}$`), id)

	history, err := s.History("NH-2025-0001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, id, history[0].MessageID)
	assert.Equal(t, models.SenderTeam, history[0].Sender)
	assert.False(t, history[0].IsEscalated)
	assert.Empty(t, history[0].EscalationReason)
}

func TestSaveMessageEscalated(t *testing.T) {
	s := newTestChatStore(t)

	_, err := s.SaveMessage("NH-2025-0001", "Jingle Coders", models.SenderBot,
		"Please escalate this to our admin team for assistance.", true, "I have a payment problem")
	require.NoError(t, err)

	escalated, err := s.Escalated()
	require.NoError(t, err)
	require.Len(t, escalated, 1)
	assert.True(t, escalated[0].IsEscalated)
	assert.Equal(t, "I have a payment problem", escalated[0].EscalationReason)
}

func TestHistoryOldestFirstAndScopedToTeam(t *testing.T) {
	s := newTestChatStore(t)

	for i, msg := range []string{"first", "second", "third"} {
		sender := models.SenderTeam
		if i%2 == 1 {
			sender = models.SenderBot
		}
		_, err := s.SaveMessage("NH-2025-0001", "Jingle Coders", sender, msg, false, "")
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := s.SaveMessage("NH-2025-0002", "Other Team", models.SenderTeam, "unrelated", false, "")
	require.NoError(t, err)

	history, err := s.History("NH-2025-0001")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "third", history[2].Message)
}

func TestEscalatedNewestFirst(t *testing.T) {
	s := newTestChatStore(t)

	_, err := s.SaveMessage("NH-2025-0001", "Jingle Coders", models.SenderBot, "answer one", true, "urgent problem")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = s.SaveMessage("NH-2025-0002", "Other Team", models.SenderBot, "answer two", true, "refund question")
	require.NoError(t, err)
	_, err = s.SaveMessage("NH-2025-0001", "Jingle Coders", models.SenderTeam, "plain question", false, "")
	require.NoError(t, err)

	escalated, err := s.Escalated()
	require.NoError(t, err)
	require.Len(t, escalated, 2)
	assert.Equal(t, "answer two", escalated[0].Message)
	assert.Equal(t, "answer one", escalated[1].Message)
}

func TestRespond(t *testing.T) {
	s := newTestChatStore(t)

	id, err := s.SaveMessage("NH-2025-0001", "Jingle Coders", models.SenderBot, "needs a human", true, "certificate issue")
	require.NoError(t, err)

	require.NoError(t, s.Respond(id, "We fixed your certificate, check your inbox.", "Mrs. Claus"))

	history, err := s.History("NH-2025-0001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "We fixed your certificate, check your inbox.", history[0].AdminResponse)
	assert.Equal(t, "Mrs. Claus", history[0].AdminRespondedBy)
	require.NotNil(t, history[0].AdminRespondedAt)

	err = s.Respond("msg-0-doesnotexist", "hello", "Admin")
	assert.ErrorIs(t, err, ErrNotFound)
}
