// Package githubtest is a fake GitHub REST API for tests. It records every
// call so tests can assert on exactly which requests a pipeline issued.
package githubtest

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// PutCall records one Contents API write.
type PutCall struct {
	Path    string
	Branch  string
	Message string
	Content string // decoded
}

// PullCall records one pull-request creation.
type PullCall struct {
	Title string
	Body  string
	Head  string
	Base  string
}

type Server struct {
	*httptest.Server

	BaseSHA  string
	PRNumber int
	PRURL    string
	User     map[string]any

	// Failure switches
	FailRefCreate bool
	FailPuts      bool
	FailPulls     bool

	mu          sync.Mutex
	refLookups  int
	createdRefs []string
	deletedRefs []string
	putCalls    []PutCall
	pullCalls   []PullCall
	files       map[string]string // path -> content served by GET contents
}

// New starts a fake GitHub API with sensible defaults.
func New() *Server {
	s := &Server{
		BaseSHA:  "abc123def456",
		PRNumber: 42,
		PRURL:    "https://github.com/devyendarm/OpenKPIs/pull/42",
		User: map[string]any{
			"login":      "octocat",
			"name":       "The Octocat",
			"avatar_url": "https://avatars.githubusercontent.com/u/583231?v=4",
		},
		files: map[string]string{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetFile makes a file available to GET contents calls.
func (s *Server) SetFile(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
}

func (s *Server) RefLookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refLookups
}

func (s *Server) CreatedRefs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.createdRefs...)
}

func (s *Server) DeletedRefs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletedRefs...)
}

func (s *Server) PutCalls() []PutCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PutCall(nil), s.putCalls...)
}

func (s *Server) PullCalls() []PullCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PullCall(nil), s.pullCalls...)
}

// TotalCalls counts every recorded GitHub round-trip.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refLookups + len(s.createdRefs) + len(s.deletedRefs) + len(s.putCalls) + len(s.pullCalls)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/user" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, s.User)

	case strings.Contains(path, "/git/ref/heads/") && r.Method == http.MethodGet:
		s.refLookups++
		writeJSON(w, http.StatusOK, map[string]any{
			"object": map[string]any{"sha": s.BaseSHA},
		})

	case strings.HasSuffix(path, "/git/refs") && r.Method == http.MethodPost:
		if s.FailRefCreate {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Reference already exists"})
			return
		}
		var body struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.createdRefs = append(s.createdRefs, body.Ref)
		writeJSON(w, http.StatusCreated, map[string]any{"ref": body.Ref})

	case strings.Contains(path, "/git/refs/heads/") && r.Method == http.MethodDelete:
		branch := path[strings.Index(path, "/git/refs/heads/")+len("/git/refs/heads/"):]
		s.deletedRefs = append(s.deletedRefs, branch)
		w.WriteHeader(http.StatusNoContent)

	case strings.Contains(path, "/contents/") && r.Method == http.MethodPut:
		if s.FailPuts {
			writeJSON(w, http.StatusConflict, map[string]any{"message": "merge conflict"})
			return
		}
		var body struct {
			Message string `json:"message"`
			Content string `json:"content"`
			Branch  string `json:"branch"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		decoded, _ := base64.StdEncoding.DecodeString(body.Content)
		s.putCalls = append(s.putCalls, PutCall{
			Path:    path[strings.Index(path, "/contents/")+len("/contents/"):],
			Branch:  body.Branch,
			Message: body.Message,
			Content: string(decoded),
		})
		writeJSON(w, http.StatusCreated, map[string]any{"commit": map[string]any{"sha": "newsha"}})

	case strings.Contains(path, "/contents/") && r.Method == http.MethodGet:
		filePath := path[strings.Index(path, "/contents/")+len("/contents/"):]
		content, ok := s.files[filePath]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"content": base64.StdEncoding.EncodeToString([]byte(content)),
			"sha":     "filesha123",
		})

	case strings.HasSuffix(path, "/pulls") && r.Method == http.MethodPost:
		if s.FailPulls {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "Validation Failed"})
			return
		}
		var body PullCall
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.pullCalls = append(s.pullCalls, body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"number":   s.PRNumber,
			"html_url": s.PRURL,
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not Found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
