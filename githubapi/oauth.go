package githubapi

import (
	"context"

	"github.com/openkpis/edge-service/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// OAuth performs the GitHub authorization-code exchange.
type OAuth struct {
	conf *oauth2.Config
}

// NewOAuth configures the exchange against github.com.
func NewOAuth(clientID, clientSecret, callbackURL string, scopes []string) *OAuth {
	return &OAuth{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     github.Endpoint,
		RedirectURL:  callbackURL,
		Scopes:       scopes,
	}}
}

// NewOAuthWithEndpoint is NewOAuth with an explicit token/authorize
// endpoint, for tests that stand in for github.com.
func NewOAuthWithEndpoint(clientID, clientSecret, callbackURL string, scopes []string, endpoint oauth2.Endpoint) *OAuth {
	o := NewOAuth(clientID, clientSecret, callbackURL, scopes)
	o.conf.Endpoint = endpoint
	return o
}

// AuthCodeURL builds the GitHub authorize redirect carrying the CSRF state.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.conf.AuthCodeURL(state)
}

// Exchange swaps the authorization code for an access token. GitHub's own
// error description is preserved in the returned error so login failures
// can be surfaced to the user.
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	token, err := o.conf.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrapf(err, "githubapi.Exchange")
	}
	if token.AccessToken == "" {
		return "", errors.Wrapf(errors.ErrGitHubAPI, "githubapi.Exchange: no access token in response")
	}
	return token.AccessToken, nil
}
