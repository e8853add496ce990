package config

import "time"

type SessionConfig interface {
	GetSessionSigningKey() string
	GetSessionTTL() time.Duration
	GetStateTTL() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionSigningKey() string {
	return GetEnv("SESSION_SIGNING_KEY", "")
}

func (Session) GetSessionTTL() time.Duration {
	return 7 * 24 * time.Hour
}

// GetStateTTL bounds the oauth_state cookie: long enough to complete the
// GitHub authorize round-trip, short enough that stale states expire.
func (Session) GetStateTTL() time.Duration {
	return 10 * time.Minute
}
