package server_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func stateCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauth_state" {
			return c
		}
	}
	return nil
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "openkpis_session" {
			return c
		}
	}
	return nil
}

func TestOAuthLogin(t *testing.T) {
	h := newHarness()
	defer h.Close()

	rec := h.do(httptest.NewRequest(http.MethodGet, "/oauth/login?return_url=https://openkpis.org/editor", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "client-id", location.Query().Get("client_id"))
	require.Equal(t, "public_repo", location.Query().Get("scope"))

	cookie := stateCookieFrom(t, rec)
	require.NotNil(t, cookie, "login must set the state cookie")
	require.Equal(t, cookie.Value, location.Query().Get("state"), "cookie and OAuth state must match")
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)

	// The return URL rides inside the state after the random prefix.
	idx := strings.Index(cookie.Value, ":")
	require.Greater(t, idx, 0)
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value[idx+1:])
	require.NoError(t, err)
	require.Equal(t, "https://openkpis.org/editor", string(decoded))
}

func TestOAuthCallback(t *testing.T) {
	state := "randomstate:" + base64.StdEncoding.EncodeToString([]byte("https://openkpis.org/editor"))

	callback := func(h *harness, query string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/oauth/callback?"+query, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		return h.do(req)
	}

	t.Run("completes login and redirects to the embedded return URL", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		rec := callback(h, "code=authcode&state="+url.QueryEscape(state), &http.Cookie{Name: "oauth_state", Value: state})
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://openkpis.org/editor", rec.Header().Get("Location"))

		session := sessionCookieFrom(t, rec)
		require.NotNil(t, session, "callback must set the session cookie")
		decoded := h.signer.Verify(session.Value)
		require.NotNil(t, decoded, "session cookie must verify against the signing key")
		require.Equal(t, "octocat", decoded.User.Login)
		require.Equal(t, "gho_testtoken", decoded.AccessToken)

		stateCookie := stateCookieFrom(t, rec)
		require.NotNil(t, stateCookie)
		require.Negative(t, stateCookie.MaxAge, "state cookie must be cleared")
	})

	t.Run("rejects a state that does not match the cookie", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		rec := callback(h, "code=authcode&state="+url.QueryEscape(state), &http.Cookie{Name: "oauth_state", Value: "different:" + state})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Nil(t, sessionCookieFrom(t, rec), "no session on state mismatch")
	})

	t.Run("rejects a missing code", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		rec := callback(h, "state="+url.QueryEscape(state), &http.Cookie{Name: "oauth_state", Value: state})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a missing state cookie", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		rec := callback(h, "code=authcode&state="+url.QueryEscape(state), nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("falls back to the default redirect when the return URL is garbage", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		badState := "randomstate:%%%not-base64%%%"
		rec := callback(h, "code=authcode&state="+url.QueryEscape(badState), &http.Cookie{Name: "oauth_state", Value: badState})
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "https://openkpis.org", rec.Header().Get("Location"))
	})
}

func TestMe(t *testing.T) {
	h := newHarness()
	defer h.Close()

	t.Run("anonymous", func(t *testing.T) {
		rec := h.do(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, false, body["authenticated"])
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, true, body["authenticated"])
		require.Equal(t, "hubot", body["login"])
	})

	t.Run("tampered cookie is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		cookie := h.sessionCookie("hubot")
		cookie.Value += "tampered"
		req.AddCookie(cookie)
		rec := h.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, false, body["authenticated"])
	})
}
