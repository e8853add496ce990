package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/openkpis/edge-service/sessions"
	"github.com/rs/zerolog/log"
)

// OAuthLoginHandler begins the GitHub authorization-code flow. The CSRF
// state and the caller's return URL travel together as
// "state:base64(returnURL)", held in the oauth_state cookie and echoed
// back by GitHub for comparison.
func (s *Server) OAuthLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := r.URL.Query().Get("return_url")
		if returnURL == "" {
			returnURL = s.config.GetRedirectBase()
		}

		state := generateRandomString(32) + ":" + base64.StdEncoding.EncodeToString([]byte(returnURL))

		s.setStateCookie(w, state)
		http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the code exchange and establishes the
// session.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		cookie, err := r.Cookie(stateCookieName)
		if code == "" || state == "" || err != nil || state != cookie.Value {
			writeError(w, http.StatusBadRequest, "Invalid OAuth callback - state mismatch or missing code")
			return
		}

		returnURL := s.decodeReturnURL(state)

		// Login failures are user-facing, so GitHub's own error description
		// is surfaced here, unlike the generic proxy-route errors.
		accessToken, err := s.oauth.Exchange(r.Context(), code)
		if err != nil {
			log.Err(err).Msg("OAuth token exchange failed")
			writeError(w, http.StatusInternalServerError, "OAuth authentication failed: "+err.Error())
			return
		}

		profile, err := s.github.AuthenticatedUser(r.Context(), accessToken)
		if err != nil {
			log.Err(err).Msg("Failed to fetch GitHub profile")
			writeError(w, http.StatusInternalServerError, "OAuth authentication failed: could not fetch user profile")
			return
		}

		session := sessions.New(accessToken, sessions.User{
			Login:     profile.Login,
			Name:      profile.Name,
			AvatarURL: profile.AvatarURL,
		}, s.config.GetSessionTTL())

		token, err := s.signer.Sign(session)
		if err != nil {
			log.Err(err).Msg("Failed to sign session")
			writeError(w, http.StatusInternalServerError, "OAuth authentication failed: could not create session")
			return
		}

		s.clearStateCookie(w)
		s.setSessionCookie(w, token)
		log.Info().Str("login", profile.Login).Msg("OAuth login completed")
		http.Redirect(w, r, returnURL, http.StatusFound)
	}
}

// decodeReturnURL recovers the return URL embedded in the state. Decode
// failures keep the configured default; a broken return URL must not fail
// an otherwise valid login.
func (s *Server) decodeReturnURL(state string) string {
	returnURL := s.config.GetRedirectBase()
	if idx := strings.Index(state, ":"); idx >= 0 {
		if decoded, err := base64.StdEncoding.DecodeString(state[idx+1:]); err == nil && len(decoded) > 0 {
			returnURL = string(decoded)
		}
	}
	return returnURL
}

// MeHandler reports the current session's user, or authenticated:false.
// It never fails: an invalid session is just an anonymous caller.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.sessionFromRequest(r)
		if session == nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"login":         session.User.Login,
			"name":          session.User.Name,
			"avatar_url":    session.User.AvatarURL,
		})
	}
}
