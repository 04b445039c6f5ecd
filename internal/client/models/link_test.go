package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLink(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 500, time.UTC)

	l := NewLink("AbCdE12345", "https://h/message?code=AbCdE12345", time.Minute, true, now)
	_, err := uuid.Parse(l.ID)
	require.NoError(t, err)
	assert.Equal(t, now.Truncate(time.Second), l.CreatedAt)
	assert.Equal(t, l.CreatedAt.Add(time.Minute), l.ExpiresAt)
	assert.True(t, l.DestroyOnRead)

	never := NewLink("AbCdE12345", "u", 0, false, now)
	assert.True(t, never.ExpiresAt.IsZero())
	assert.NotEqual(t, l.ID, never.ID)
}

func TestLink_Status(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLink("AbCdE12345", "u", 30*time.Second, false, now)

	assert.Equal(t, LinkActive, l.Status(now))
	assert.Equal(t, 10*time.Second, l.Remaining(now.Add(20*time.Second)))
	assert.Equal(t, LinkExpired, l.Status(now.Add(30*time.Second)))
	assert.Zero(t, l.Remaining(now.Add(time.Hour)))

	l.Deleted = true
	assert.Equal(t, LinkDeleted, l.Status(now))

	never := NewLink("AbCdE12345", "u", 0, false, now)
	assert.Equal(t, LinkActive, never.Status(now.Add(24*365*time.Hour)))
	assert.Zero(t, never.Remaining(now))
}
