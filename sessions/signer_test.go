package sessions_test

import (
	"strings"
	"testing"
	"time"

	"github.com/openkpis/edge-service/sessions"
	"github.com/stretchr/testify/require"
)

const signingKey = "test-signing-key-1234"

func testSession(ttl time.Duration) sessions.Session {
	return sessions.New("gho_testtoken", sessions.User{
		Login:     "octocat",
		Name:      "The Octocat",
		AvatarURL: "https://avatars.githubusercontent.com/u/583231?v=4",
	}, ttl)
}

func TestSigner_RoundTrip(t *testing.T) {
	signer := sessions.NewSigner(signingKey)
	session := testSession(time.Hour)

	token, err := signer.Sign(session)
	require.NoError(t, err)
	require.Contains(t, token, ".")

	decoded := signer.Verify(token)
	require.NotNil(t, decoded)
	require.Equal(t, session, *decoded)
}

func TestSigner_WrongKey(t *testing.T) {
	signer := sessions.NewSigner(signingKey)
	token, err := signer.Sign(testSession(time.Hour))
	require.NoError(t, err)

	other := sessions.NewSigner("a-different-key")
	require.Nil(t, other.Verify(token))
}

func TestSigner_Expired(t *testing.T) {
	signer := sessions.NewSigner(signingKey)

	// Valid signature over a payload whose expiry has already passed.
	token, err := signer.Sign(testSession(-time.Minute))
	require.NoError(t, err)
	require.Nil(t, signer.Verify(token))
}

func TestSigner_Malformed(t *testing.T) {
	signer := sessions.NewSigner(signingKey)

	t.Run("empty token", func(t *testing.T) {
		require.Nil(t, signer.Verify(""))
	})

	t.Run("no separator", func(t *testing.T) {
		require.Nil(t, signer.Verify("justonepart"))
	})

	t.Run("missing signature", func(t *testing.T) {
		require.Nil(t, signer.Verify("payload."))
	})

	t.Run("non-hex signature", func(t *testing.T) {
		require.Nil(t, signer.Verify("payload.zzzz"))
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := signer.Sign(testSession(time.Hour))
		require.NoError(t, err)
		parts := strings.SplitN(token, ".", 2)
		require.Nil(t, signer.Verify("x"+parts[0]+"."+parts[1]))
	})
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	require.False(t, testSession(time.Hour).Expired(now))
	require.True(t, testSession(-time.Second).Expired(now))

	// Zero expiry means the field was absent; treat as non-expiring so the
	// signature check alone decides.
	require.False(t, sessions.Session{}.Expired(now))
}
