package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContent(t *testing.T) {
	h := newHarness()
	defer h.Close()

	t.Run("requires a session", func(t *testing.T) {
		rec := h.do(httptest.NewRequest(http.MethodGet, "/content?path=kpis/revenue.yaml", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("requires a path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/content", nil)
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns decoded content and sha", func(t *testing.T) {
		h.github.SetFile("kpis/revenue.yaml", "name: Revenue\n")

		req := httptest.NewRequest(http.MethodGet, "/content?path=kpis/revenue.yaml", nil)
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body["content"])
		require.Equal(t, "filesha123", body["sha"])
	})

	t.Run("hides upstream detail on failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/content?path=does/not/exist.yaml", nil)
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "Failed to fetch content")
		require.NotContains(t, rec.Body.String(), "404")
	})
}

func TestCommit(t *testing.T) {
	payload := `{
		"mode": "create",
		"id": "revenue",
		"yamlPath": "kpis/revenue.yaml",
		"mdxPath": "kpis/revenue.mdx",
		"yamlContent": "name: Revenue\n",
		"mdxContent": "# Revenue\n"
	}`

	t.Run("requires a session and makes no GitHub calls without one", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		rec := h.do(httptest.NewRequest(http.MethodPost, "/commit", strings.NewReader(payload)))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Zero(t, h.github.TotalCalls())
	})

	t.Run("creates branch, writes both files and opens a pull request", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		req := httptest.NewRequest(http.MethodPost, "/commit", strings.NewReader(payload))
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusOK, rec.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Equal(t, true, result["success"])
		require.Equal(t, h.github.PRURL, result["prUrl"])
		require.Equal(t, "submit/hubot/revenue", result["headBranch"])

		require.Equal(t, []string{"refs/heads/submit/hubot/revenue"}, h.github.CreatedRefs())
		puts := h.github.PutCalls()
		require.Len(t, puts, 2)
		for _, put := range puts {
			require.Equal(t, "submit/hubot/revenue", put.Branch)
			require.Equal(t, "Add revenue", put.Message)
		}
		pulls := h.github.PullCalls()
		require.Len(t, pulls, 1)
		require.Equal(t, "Add revenue", pulls[0].Title)
		require.Equal(t, "devyendarm:submit/hubot/revenue", pulls[0].Head)
		require.Equal(t, "main", pulls[0].Base)
		require.Empty(t, h.github.DeletedRefs())
	})

	t.Run("rejects invalid payloads before touching GitHub", func(t *testing.T) {
		h := newHarness()
		defer h.Close()

		req := httptest.NewRequest(http.MethodPost, "/commit", strings.NewReader(`{"mode":"create","id":"revenue"}`))
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Zero(t, h.github.TotalCalls())
	})

	t.Run("reports a conflict when the submit branch already exists", func(t *testing.T) {
		h := newHarness()
		defer h.Close()
		h.github.FailRefCreate = true

		req := httptest.NewRequest(http.MethodPost, "/commit", strings.NewReader(payload))
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Contains(t, rec.Body.String(), "already in review")
	})

	t.Run("cleans up the branch and hides detail when writes fail", func(t *testing.T) {
		h := newHarness()
		defer h.Close()
		h.github.FailPuts = true

		req := httptest.NewRequest(http.MethodPost, "/commit", strings.NewReader(payload))
		req.AddCookie(h.sessionCookie("hubot"))
		rec := h.do(req)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "Failed to commit changes")
		require.Equal(t, []string{"submit/hubot/revenue"}, h.github.DeletedRefs())
	})
}
