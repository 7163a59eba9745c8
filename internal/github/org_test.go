package github

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	gh "github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(repos []*gh.Repository) []string {
	var out []string
	for _, r := range repos {
		out = append(out, r.GetFullName())
	}
	return out
}

func TestFetchOrgRepos(t *testing.T) {
	client, mux, _ := setup(t)
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("type"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"name":"old","full_name":"acme/old","archived":true},
				{"name":"tools","full_name":"acme/tools"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, "http://"+r.Host+r.URL.Path))
		fmt.Fprint(w, `[{"name":"core","full_name":"acme/core"},
			{"name":"upstream","full_name":"acme/upstream","fork":true}]`)
	})

	all, err := client.FetchOrgRepos(context.Background(), "acme", false, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/core", "acme/upstream", "acme/old", "acme/tools"}, names(all))

	filtered, err := client.FetchOrgRepos(context.Background(), "acme", true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/core", "acme/tools"}, names(filtered))
}

func TestFetchOrgRepos_Error(t *testing.T) {
	client, mux, _ := setup(t)
	mux.HandleFunc("/orgs/ghost/repos", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.FetchOrgRepos(context.Background(), "ghost", true, true)
	assert.ErrorContains(t, err, "error fetching repositories for ghost")
}

func TestResolveRepo(t *testing.T) {
	client, mux, _ := setup(t)
	direct := 0
	mux.HandleFunc("/repos/other/lib", func(w http.ResponseWriter, r *http.Request) {
		direct++
		fmt.Fprint(w, `{"name":"lib","full_name":"other/lib"}`)
	})
	mux.HandleFunc("/repos/acme/archived", func(w http.ResponseWriter, r *http.Request) {
		direct++
		fmt.Fprint(w, `{"name":"archived","full_name":"acme/archived","archived":true}`)
	})
	mux.HandleFunc("/repos/acme/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	idx := NewRepoIndex([]*gh.Repository{
		{Name: gh.String("core"), FullName: gh.String("acme/core")},
	})

	repo, err := client.ResolveRepo(context.Background(), "acme", "core", idx)
	require.NoError(t, err)
	assert.Equal(t, "acme/core", repo.GetFullName())

	repo, err = client.ResolveRepo(context.Background(), "acme", "acme/core", idx)
	require.NoError(t, err)
	assert.Equal(t, "acme/core", repo.GetFullName())
	assert.Zero(t, direct)

	repo, err = client.ResolveRepo(context.Background(), "acme", " other/lib ", idx)
	require.NoError(t, err)
	assert.Equal(t, "other/lib", repo.GetFullName())

	repo, err = client.ResolveRepo(context.Background(), "acme", "archived", idx)
	require.NoError(t, err)
	assert.True(t, repo.GetArchived())
	assert.Equal(t, 2, direct)

	_, err = client.ResolveRepo(context.Background(), "acme", "missing", idx)
	assert.ErrorIs(t, err, ErrNotFound)
}
