// Package githubapi is a minimal client for the slice of the GitHub REST
// API the edge service proxies: the authenticated user, the Contents API,
// git refs, and pull requests. Every call is made with the caller's OAuth
// token, never a server-held one.
package githubapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openkpis/edge-service/internal/errors"
)

const userAgent = "OpenKPIs-Edge"

type Client struct {
	baseURL    string
	owner      string
	repo       string
	httpClient *http.Client
}

// New creates a client for the given repository. baseURL is normally
// https://api.github.com; tests point it at a local server.
func New(baseURL, owner, repo string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		owner:      owner,
		repo:       repo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// User is the GitHub profile subset the service cares about.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// File is a decoded Contents API response.
type File struct {
	Content string
	SHA     string
}

// PullRequest is the subset of a created PR returned to callers.
type PullRequest struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// AuthenticatedUser fetches the profile of the token's owner.
func (c *Client) AuthenticatedUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, token, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, errors.Wrapf(err, "githubapi.AuthenticatedUser")
	}
	return &user, nil
}

// GetFile fetches a repository file from the default branch and decodes
// its base64 body.
func (c *Client) GetFile(ctx context.Context, token, path string) (*File, error) {
	var resp struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, path)
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, errors.Wrapf(err, "githubapi.GetFile %s", path)
	}

	// The Contents API wraps base64 at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, errors.Wrapf(err, "githubapi.GetFile decode %s", path)
	}
	return &File{Content: string(decoded), SHA: resp.SHA}, nil
}

// PutFile creates or updates a file on the given branch via the Contents
// API. Content is base64-encoded inline; GitHub's content-size ceiling
// applies.
func (c *Client) PutFile(ctx context.Context, token, path, branch, message, content string) error {
	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  branch,
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.repo, path)
	if err := c.do(ctx, token, http.MethodPut, endpoint, body, nil); err != nil {
		return errors.Wrapf(err, "githubapi.PutFile %s", path)
	}
	return nil
}

// BranchSHA resolves a branch name to its tip commit SHA.
func (c *Client) BranchSHA(ctx context.Context, token, branch string) (string, error) {
	var resp struct {
		Object struct {
			SHA string `json:"sha"`
		} `json:"object"`
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", c.owner, c.repo, branch)
	if err := c.do(ctx, token, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", errors.Wrapf(err, "githubapi.BranchSHA %s", branch)
	}
	return resp.Object.SHA, nil
}

// CreateBranch creates refs/heads/{name} pointing at sha. A name that
// already exists returns ErrBranchConflict.
func (c *Client) CreateBranch(ctx context.Context, token, name, sha string) error {
	body := map[string]string{
		"ref": "refs/heads/" + name,
		"sha": sha,
	}
	endpoint := fmt.Sprintf("/repos/%s/%s/git/refs", c.owner, c.repo)
	err := c.do(ctx, token, http.MethodPost, endpoint, body, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
			return errors.Wrapf(errors.ErrBranchConflict, "githubapi.CreateBranch %s", name)
		}
		return errors.Wrapf(err, "githubapi.CreateBranch %s", name)
	}
	return nil
}

// DeleteBranch removes refs/heads/{name}. Used for best-effort cleanup of
// branches left behind by a failed commit pipeline.
func (c *Client) DeleteBranch(ctx context.Context, token, name string) error {
	endpoint := fmt.Sprintf("/repos/%s/%s/git/refs/heads/%s", c.owner, c.repo, name)
	if err := c.do(ctx, token, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrapf(err, "githubapi.DeleteBranch %s", name)
	}
	return nil
}

// CreatePull opens a pull request from head into base.
func (c *Client) CreatePull(ctx context.Context, token, title, body, head, base string) (*PullRequest, error) {
	payload := map[string]string{
		"title": title,
		"body":  body,
		"head":  head,
		"base":  base,
	}
	var pr PullRequest
	endpoint := fmt.Sprintf("/repos/%s/%s/pulls", c.owner, c.repo)
	if err := c.do(ctx, token, http.MethodPost, endpoint, payload, &pr); err != nil {
		return nil, errors.Wrapf(err, "githubapi.CreatePull %s", head)
	}
	return &pr, nil
}

// HeadRef returns the owner-qualified head reference GitHub expects when
// opening a pull request ("owner:branch").
func (c *Client) HeadRef(branch string) string {
	return c.owner + ":" + branch
}

// RepoFullName returns "owner/repo".
func (c *Client) RepoFullName() string {
	return c.owner + "/" + c.repo
}

// APIError carries a non-2xx GitHub response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error {
	return errors.ErrGitHubAPI
}

func (c *Client) do(ctx context.Context, token, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
