package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openkpis/edge-service/internal/errors"
	"github.com/openkpis/edge-service/publisher"
)

// CommitHandler runs the branch/write/PR pipeline for a catalog
// submission on behalf of the signed-in user.
func (s *Server) CommitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req publisher.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		session := sessionFromContext(r.Context())
		result, err := s.publisher.Publish(r.Context(), session, &req)
		if err != nil {
			switch {
			case apperrors.Is(err, apperrors.ErrInvalidRequest):
				writeError(w, http.StatusBadRequest, err.Error())
			case apperrors.Is(err, apperrors.ErrBranchConflict):
				writeError(w, http.StatusConflict, "A submission for this entry is already in review")
			default:
				log.Err(err).Str("id", req.ID).Msg("Commit pipeline failed")
				writeError(w, http.StatusInternalServerError, "Failed to commit changes")
			}
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
