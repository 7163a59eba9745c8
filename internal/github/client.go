package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when a requested repository does not exist or is
// not visible to the token.
var ErrNotFound = errors.New("not found")

// Client wraps the GitHub API client with a request rate limit.
type Client struct {
	gh      *gh.Client
	cfg     *Config
	limiter *rate.Limiter
	clock   clockwork.Clock
	log     logrus.FieldLogger
}

type ClientOption func(*Client)

func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) { c.log = log }
}

func WithClock(clock clockwork.Clock) ClientOption {
	return func(c *Client) { c.clock = clock }
}

func GetGithubClient(token string) *gh.Client {
	if token == "" {
		return gh.NewClient(nil)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return gh.NewClient(tc)
}

// NewClient builds an authenticated client. An empty token gives an
// anonymous client with GitHub's much lower rate limit.
func NewClient(token string, cfg *Config, opts ...ClientOption) *Client {
	return Wrap(GetGithubClient(token), cfg, opts...)
}

// Wrap puts rate limiting and logging around an existing go-github client.
func Wrap(client *gh.Client, cfg *Config, opts ...ClientOption) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		gh:      client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		clock:   clockwork.NewRealClock(),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// GetToken looks for a token in the --token flag (which also reads
// GITHUB_TOKEN and GH_TOKEN), then asks the gh CLI.
func GetToken(c *cli.Context) string {
	return resolveToken(c.String("token"), os.Getenv, ghAuthToken)
}

func resolveToken(flag string, getenv func(string) string, fallback func() (string, error)) string {
	if token := strings.TrimSpace(flag); token != "" {
		return token
	}
	for _, key := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := strings.TrimSpace(getenv(key)); token != "" {
			return token
		}
	}
	if fallback == nil {
		return ""
	}
	token, err := fallback()
	if err != nil {
		logrus.WithError(err).Debug("gh CLI not available or not authenticated")
		return ""
	}
	return strings.TrimSpace(token)
}

func ghAuthToken() (string, error) {
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("gh auth token: %w", err)
	}
	return string(out), nil
}

func ValidateToken(ctx context.Context, c *Client) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return fmt.Errorf("invalid GitHub token")
			case http.StatusForbidden:
				c.log.Warn("Rate limited, skipping token validation")
				return nil
			}
		}
		return fmt.Errorf("error validating token: %w", err)
	}
	return nil
}

// RateLimitInfo is the core API budget left for this token.
type RateLimitInfo struct {
	Limit     int
	Remaining int
}

func (c *Client) RateLimit(ctx context.Context) (*RateLimitInfo, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch rate limit: %w", err)
	}
	core := limits.GetCore()
	if core == nil {
		return nil, fmt.Errorf("fetch rate limit: no core limit in response")
	}
	return &RateLimitInfo{Limit: core.Limit, Remaining: core.Remaining}, nil
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// LatestReleaseTag returns the tag of the newest release of owner/repo.
func (c *Client) LatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	release, _, err := c.gh.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("fetch latest release of %s/%s: %w", owner, repo, err)
	}
	return release.GetTagName(), nil
}
