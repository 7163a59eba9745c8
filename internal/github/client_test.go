package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setup starts a fake API server and returns a client pointed at it.
func setup(t *testing.T) (*Client, *http.ServeMux, *clockwork.FakeClock) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	raw := gh.NewClient(nil)
	raw.BaseURL = base

	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 0
	clock := clockwork.NewFakeClockAt(epoch)
	logger, _ := test.NewNullLogger()

	return Wrap(raw, cfg, WithClock(clock), WithLogger(logger)), mux, clock
}

func TestResolveToken(t *testing.T) {
	env := map[string]string{"GITHUB_TOKEN": " from-github ", "GH_TOKEN": "from-gh"}
	getenv := func(k string) string { return env[k] }
	cliToken := func() (string, error) { return "from-cli\n", nil }
	noCLI := func() (string, error) { return "", errors.New("exec: \"gh\": not found") }

	assert.Equal(t, "from-flag", resolveToken("from-flag", getenv, cliToken))
	assert.Equal(t, "from-github", resolveToken("", getenv, cliToken))

	delete(env, "GITHUB_TOKEN")
	assert.Equal(t, "from-gh", resolveToken("", getenv, cliToken))

	delete(env, "GH_TOKEN")
	assert.Equal(t, "from-cli", resolveToken("", getenv, cliToken))
	assert.Equal(t, "", resolveToken("", getenv, noCLI))
	assert.Equal(t, "", resolveToken("", getenv, nil))
}

func TestRateLimit(t *testing.T) {
	client, mux, _ := setup(t)
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4321,"reset":1700000000}}}`)
	})

	info, err := client.RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &RateLimitInfo{Limit: 5000, Remaining: 4321}, info)
}

func TestRateLimit_GoesThroughLimiter(t *testing.T) {
	client, mux, _ := setup(t)
	calls := 0
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4321,"reset":1700000000}}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.RateLimit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestValidateToken(t *testing.T) {
	client, mux, _ := setup(t)
	status := http.StatusOK
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"login":"octocat"}`)
	})

	require.NoError(t, ValidateToken(context.Background(), client))

	status = http.StatusUnauthorized
	assert.EqualError(t, ValidateToken(context.Background(), client), "invalid GitHub token")

	status = http.StatusForbidden
	assert.NoError(t, ValidateToken(context.Background(), client))
}

func TestSplitFullName(t *testing.T) {
	owner, name, err := SplitFullName("acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widget", name)

	for _, bad := range []string{"", "widget", "/widget", "acme/", "acme/a/b"} {
		_, _, err := SplitFullName(bad)
		assert.Error(t, err, bad)
	}
}
