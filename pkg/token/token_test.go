package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)

	signed, expiresAt, err := m.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager("0123456789abcdef", time.Hour)
	signed, _, err := m.Issue(1)
	require.NoError(t, err)

	other := NewManager("fedcba9876543210", time.Hour)
	_, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalid)
}
