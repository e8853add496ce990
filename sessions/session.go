package sessions

import "time"

// CookieName is the session cookie shared with the browser clients.
const CookieName = "openkpis_session"

// User is the subset of the GitHub profile carried inside a session.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Session is the complete client-held session state. There is no
// server-side record: the signed cookie is the system of record, and a
// session ends when Expires passes or the browser drops the cookie.
type Session struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
	Expires     int64  `json:"expires"` // Unix milliseconds
}

// New builds a session for the given user and token, valid for ttl from now.
func New(accessToken string, user User, ttl time.Duration) Session {
	return Session{
		AccessToken: accessToken,
		User:        user,
		Expires:     time.Now().Add(ttl).UnixMilli(),
	}
}

// Expired reports whether the session's expiry has passed at the given time.
func (s Session) Expired(now time.Time) bool {
	return s.Expires != 0 && now.UnixMilli() > s.Expires
}
