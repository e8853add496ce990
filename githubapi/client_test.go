package githubapi_test

import (
	"context"
	"testing"

	"github.com/openkpis/edge-service/githubapi"
	"github.com/openkpis/edge-service/githubapi/githubtest"
	"github.com/openkpis/edge-service/internal/errors"
	"github.com/stretchr/testify/require"
)

const testToken = "gho_testtoken"

func newTestClient(t *testing.T) (*githubapi.Client, *githubtest.Server) {
	t.Helper()
	gh := githubtest.New()
	t.Cleanup(gh.Close)
	return githubapi.New(gh.URL, "devyendarm", "OpenKPIs"), gh
}

func TestClient_AuthenticatedUser(t *testing.T) {
	client, _ := newTestClient(t)

	user, err := client.AuthenticatedUser(context.Background(), testToken)
	require.NoError(t, err)
	require.Equal(t, "octocat", user.Login)
	require.Equal(t, "The Octocat", user.Name)
	require.Contains(t, user.AvatarURL, "avatars.githubusercontent.com")
}

func TestClient_GetFile(t *testing.T) {
	client, gh := newTestClient(t)
	gh.SetFile("data-layer/kpis/checkout-rate.yml", "name: Checkout Rate\n")

	t.Run("existing file", func(t *testing.T) {
		file, err := client.GetFile(context.Background(), testToken, "data-layer/kpis/checkout-rate.yml")
		require.NoError(t, err)
		require.Equal(t, "name: Checkout Rate\n", file.Content)
		require.Equal(t, "filesha123", file.SHA)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := client.GetFile(context.Background(), testToken, "data-layer/kpis/nope.yml")
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrGitHubAPI))
	})
}

func TestClient_BranchAndRefs(t *testing.T) {
	client, gh := newTestClient(t)
	ctx := context.Background()

	sha, err := client.BranchSHA(ctx, testToken, "main")
	require.NoError(t, err)
	require.Equal(t, gh.BaseSHA, sha)

	require.NoError(t, client.CreateBranch(ctx, testToken, "submit/octocat/checkout-rate", sha))
	require.Equal(t, []string{"refs/heads/submit/octocat/checkout-rate"}, gh.CreatedRefs())

	require.NoError(t, client.DeleteBranch(ctx, testToken, "submit/octocat/checkout-rate"))
	require.Equal(t, []string{"submit/octocat/checkout-rate"}, gh.DeletedRefs())
}

func TestClient_CreateBranchConflict(t *testing.T) {
	client, gh := newTestClient(t)
	gh.FailRefCreate = true

	err := client.CreateBranch(context.Background(), testToken, "submit/octocat/dup", "abc")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrBranchConflict))
}

func TestClient_CreatePull(t *testing.T) {
	client, gh := newTestClient(t)

	pr, err := client.CreatePull(context.Background(), testToken, "Add checkout-rate", "body", client.HeadRef("submit/octocat/checkout-rate"), "main")
	require.NoError(t, err)
	require.Equal(t, gh.PRNumber, pr.Number)
	require.Equal(t, gh.PRURL, pr.HTMLURL)

	pulls := gh.PullCalls()
	require.Len(t, pulls, 1)
	require.Equal(t, "devyendarm:submit/octocat/checkout-rate", pulls[0].Head)
	require.Equal(t, "main", pulls[0].Base)
}

func TestClient_Naming(t *testing.T) {
	client, _ := newTestClient(t)
	require.Equal(t, "devyendarm/OpenKPIs", client.RepoFullName())
	require.Equal(t, "devyendarm:branch", client.HeadRef("branch"))
}
