package sessions

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Signer signs and verifies session tokens. The wire format is
// "payload.hexSignature": the base64url-encoded JSON session followed by
// the hex HMAC-SHA256 of that payload under the server-held key.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

// Sign serializes and signs the session into a cookie-safe token.
func (s *Signer) Sign(session Session) (string, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(data)
	return payload + "." + s.signature(payload), nil
}

// Verify checks the token's signature and expiry and returns the decoded
// session. It returns nil for any malformed, tampered, or expired token;
// callers never need to distinguish why a session was rejected.
func (s *Signer) Verify(token string) *Session {
	dot := strings.LastIndex(token, ".")
	if dot <= 0 || dot == len(token)-1 {
		return nil
	}
	payload, signature := token[:dot], token[dot+1:]

	want, err := hex.DecodeString(signature)
	if err != nil {
		return nil
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	if !hmac.Equal(mac.Sum(nil), want) {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil
	}
	if session.Expired(time.Now()) {
		return nil
	}
	return &session
}

func (s *Signer) signature(payload string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
