package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairRoundTrip(t *testing.T) {
	access, refresh, err := GeneratePair(7, "alice", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := ParseAccess(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	claims, err = ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	access, refresh, err := GeneratePair(1, "alice", "viewer")
	require.NoError(t, err)

	_, err = ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)
}
