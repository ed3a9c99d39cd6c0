package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndLookup(t *testing.T) {
	r := NewRegistry()

	s, err := r.Create("u1", "teacher", "Ada", "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)

	got, err := r.Lookup(s.Token)
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "teacher", got.Role)
	require.Equal(t, "ada@example.com", got.Email)
}

func TestLookupUnknownToken(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("no-such-token")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLookupEmptyToken(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	r := NewRegistry()
	s, err := r.Create("u1", "student", "Bob", "bob@example.com")
	require.NoError(t, err)

	r.Revoke(s.Token)
	_, err = r.Lookup(s.Token)
	require.ErrorIs(t, err, ErrUnauthorized)

	// Revoking again is a no-op.
	r.Revoke(s.Token)
}

func TestTokensAreUnique(t *testing.T) {
	r := NewRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		s, err := r.Create("u", "student", "n", "e")
		require.NoError(t, err)
		require.False(t, seen[s.Token])
		seen[s.Token] = true
	}
	require.Equal(t, 100, r.Count())
}

func TestMultipleSessionsPerUser(t *testing.T) {
	r := NewRegistry()
	a, err := r.Create("u1", "student", "Bob", "bob@example.com")
	require.NoError(t, err)
	b, err := r.Create("u1", "student", "Bob", "bob@example.com")
	require.NoError(t, err)
	require.NotEqual(t, a.Token, b.Token)

	r.Revoke(a.Token)
	_, err = r.Lookup(b.Token)
	require.NoError(t, err)
}
