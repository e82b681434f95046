package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	id := uuid.New()

	tok, err := issuer.CreateToken(id, "alice")
	require.NoError(t, err)

	gotID, gotName, err := issuer.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "alice", gotName)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Hour)
	other := NewIssuer("secret-b", time.Hour)

	tok, err := issuer.CreateToken(uuid.New(), "bob")
	require.NoError(t, err)

	_, _, err = other.ParseToken(tok)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	issuer.ttl = -time.Minute

	tok, err := issuer.CreateToken(uuid.New(), "carol")
	require.NoError(t, err)

	_, _, err = issuer.ParseToken(tok)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)
	_, _, err := issuer.ParseToken("not-a-token")
	assert.Error(t, err)
}
