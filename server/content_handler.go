package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// ContentHandler proxies a file read from the configured repository using
// the caller's own GitHub token. Upstream failures are logged but reported
// generically so GitHub internals are not leaked to browsers.
func (s *Server) ContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "Missing path parameter")
			return
		}

		session := sessionFromContext(r.Context())
		file, err := s.github.GetFile(r.Context(), session.AccessToken, path)
		if err != nil {
			log.Err(err).Str("path", path).Msg("Content fetch failed")
			writeError(w, http.StatusInternalServerError, "Failed to fetch content")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"content": file.Content,
			"sha":     file.SHA,
		})
	}
}
