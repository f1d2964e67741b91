package utils

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestEmailMessageSingleRecipient(t *testing.T) {
	t.Setenv("EMAIL_FROM", "noreply@gymfit.test")

	sent := 0
	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		sent++
		assert.Equal(t, "noreply@gymfit.test", from)
		assert.Equal(t, []string{"admin1@gym.test"}, to)
		return nil
	})

	m := emailMessage("admin1@gym.test", "Membership expired", "body")
	require.NoError(t, gomail.Send(sender, m))
	assert.Equal(t, 1, sent)
}

func TestEmailMessageRejectsJoinedRecipients(t *testing.T) {
	t.Setenv("EMAIL_FROM", "noreply@gymfit.test")

	sender := gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		return nil
	})

	// Admin fan-out must loop per address; a comma-joined To header never
	// leaves the building.
	m := emailMessage("admin1@gym.test,admin2@gym.test", "Membership expired", "body")
	assert.Error(t, gomail.Send(sender, m))
}
