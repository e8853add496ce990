// Package publisher implements the propose-a-change pipeline: create a
// branch off the base branch, write the submitted YAML and MDX files to
// it, and open a pull request — all through the GitHub REST API with the
// submitting user's token.
package publisher

import (
	"context"
	"fmt"

	"github.com/openkpis/edge-service/githubapi"
	"github.com/openkpis/edge-service/internal/errors"
	"github.com/openkpis/edge-service/sessions"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// GitHubClient is the slice of githubapi.Client the pipeline uses.
type GitHubClient interface {
	BranchSHA(ctx context.Context, token, branch string) (string, error)
	CreateBranch(ctx context.Context, token, name, sha string) error
	DeleteBranch(ctx context.Context, token, name string) error
	PutFile(ctx context.Context, token, path, branch, message, content string) error
	CreatePull(ctx context.Context, token, title, body, head, base string) (*githubapi.PullRequest, error)
	HeadRef(branch string) string
	RepoFullName() string
}

// Request is the /commit payload sent by the editor frontends.
type Request struct {
	Mode          string `json:"mode"` // "create" or "update"
	ID            string `json:"id"`
	YAMLPath      string `json:"yamlPath"`
	MDXPath       string `json:"mdxPath"`
	YAMLContent   string `json:"yamlContent"`
	MDXContent    string `json:"mdxContent"`
	CommitMessage string `json:"commitMessage"`
}

// Validate checks the required fields and that the submitted YAML actually
// parses. It runs before any GitHub call so a bad payload costs nothing.
func (r *Request) Validate() error {
	if r.ID == "" || r.YAMLContent == "" || r.MDXContent == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "publisher: id, yamlContent and mdxContent are required")
	}
	var doc any
	if err := yaml.Unmarshal([]byte(r.YAMLContent), &doc); err != nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "publisher: yamlContent is not valid YAML: %v", err)
	}
	return nil
}

func (r *Request) creating() bool {
	return r.Mode == "create"
}

func (r *Request) commitMessage() string {
	if r.CommitMessage != "" {
		return r.CommitMessage
	}
	if r.creating() {
		return "Add " + r.ID
	}
	return "Update " + r.ID
}

// Result is the /commit success response.
type Result struct {
	Success          bool   `json:"success"`
	PRURL            string `json:"prUrl"`
	HeadRepoFullName string `json:"headRepoFullName"`
	HeadBranch       string `json:"headBranch"`
	PRNumber         int    `json:"prNumber"`
	Message          string `json:"message"`
}

type Publisher struct {
	github     GitHubClient
	baseBranch string
}

func New(github GitHubClient, baseBranch string) *Publisher {
	return &Publisher{github: github, baseBranch: baseBranch}
}

// Publish runs the pipeline for the given session. After the branch has
// been created, any failure triggers a best-effort branch deletion so a
// partial failure does not leave an orphaned branch behind.
func (p *Publisher) Publish(ctx context.Context, session *sessions.Session, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token := session.AccessToken
	branch := fmt.Sprintf("submit/%s/%s", session.User.Login, req.ID)

	baseSHA, err := p.github.BranchSHA(ctx, token, p.baseBranch)
	if err != nil {
		return nil, errors.Wrapf(err, "publisher: resolve %s", p.baseBranch)
	}

	if err := p.github.CreateBranch(ctx, token, branch, baseSHA); err != nil {
		return nil, errors.Wrapf(err, "publisher: create branch")
	}

	if err := p.writeFiles(ctx, token, branch, req); err != nil {
		p.cleanupBranch(ctx, token, branch)
		return nil, errors.Wrapf(err, "publisher: write files")
	}

	pr, err := p.github.CreatePull(ctx, token, p.prTitle(req), p.prBody(req), p.github.HeadRef(branch), p.baseBranch)
	if err != nil {
		p.cleanupBranch(ctx, token, branch)
		return nil, errors.Wrapf(err, "publisher: open pull request")
	}

	return &Result{
		Success:          true,
		PRURL:            pr.HTMLURL,
		HeadRepoFullName: p.github.RepoFullName(),
		HeadBranch:       branch,
		PRNumber:         pr.Number,
		Message:          "Changes committed successfully",
	}, nil
}

// writeFiles puts both files concurrently and waits for both, so one slow
// write does not serialize behind the other.
func (p *Publisher) writeFiles(ctx context.Context, token, branch string, req *Request) error {
	message := req.commitMessage()

	errs := make(chan error, 2)
	put := func(path, content string) {
		errs <- p.github.PutFile(ctx, token, path, branch, message, content)
	}
	go put(req.YAMLPath, req.YAMLContent)
	go put(req.MDXPath, req.MDXContent)

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// cleanupBranch deletes the submit branch after a failed pipeline step.
// Best effort: the original error is what the caller sees either way.
func (p *Publisher) cleanupBranch(ctx context.Context, token, branch string) {
	if err := p.github.DeleteBranch(ctx, token, branch); err != nil {
		log.Err(err).Str("branch", branch).Msg("Failed to clean up branch after commit failure")
	}
}

func (p *Publisher) prTitle(req *Request) string {
	if req.creating() {
		return "Add " + req.ID
	}
	return "Update " + req.ID
}

func (p *Publisher) prBody(req *Request) string {
	action := "Updated"
	if req.creating() {
		action = "Created"
	}
	return fmt.Sprintf(
		"## Summary\n\n%s %s\n\n## Changes\n\n- **YAML File**: `%s`\n- **MDX File**: `%s`\n- **Commit Message**: %s\n\n---\n\n*This PR was created automatically by the OpenKPIs editor.*",
		action, req.ID, req.YAMLPath, req.MDXPath, req.commitMessage(),
	)
}
