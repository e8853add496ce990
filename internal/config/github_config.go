package config

type GitHubConfig interface {
	GetGitHubClientID() string
	GetGitHubClientSecret() string
	GetGitHubOwner() string
	GetGitHubRepo() string
	GetGitHubBaseBranch() string
	GetGitHubAPIBaseURL() string
	GetOAuthCallbackURL() string
	GetOAuthScopes() []string
}

type GitHub struct{}

var _ GitHubConfig = GitHub{}

func (GitHub) GetGitHubClientID() string {
	return GetEnv("GITHUB_CLIENT_ID", "")
}

func (GitHub) GetGitHubClientSecret() string {
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func (GitHub) GetGitHubOwner() string {
	return GetEnv("GITHUB_OWNER", "devyendarm")
}

func (GitHub) GetGitHubRepo() string {
	return GetEnv("GITHUB_REPO", "OpenKPIs")
}

func (GitHub) GetGitHubBaseBranch() string {
	return GetEnv("GITHUB_BASE_BRANCH", "main")
}

// GetGitHubAPIBaseURL is overridable so tests can point the client at a
// local httptest server.
func (GitHub) GetGitHubAPIBaseURL() string {
	return GetEnv("GITHUB_API_BASE_URL", "https://api.github.com")
}

// GetOAuthCallbackURL must match the callback registered on the GitHub
// OAuth application.
func (GitHub) GetOAuthCallbackURL() string {
	return GetEnv("OAUTH_CALLBACK_URL", "https://oauthgithub.openkpis.org/oauth/callback")
}

// public_repo is required for the commit proxy to push branches and open
// pull requests with the user's token.
func (GitHub) GetOAuthScopes() []string {
	return []string{"public_repo"}
}
