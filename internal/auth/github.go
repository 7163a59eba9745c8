package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/gnomegl/contribreport/internal/github"
	"github.com/gnomegl/contribreport/internal/utils"
)

var ErrNoToken = errors.New("no GitHub token found, set GITHUB_TOKEN/GH_TOKEN or run `gh auth login`")

// SetupGitHubClient finds a token, builds a rate limited client and checks
// that GitHub accepts the token.
func SetupGitHubClient(ctx context.Context, c *cli.Context, cfg *github.Config, opts ...github.ClientOption) (*github.Client, error) {
	token := github.GetToken(c)
	if token == "" {
		return nil, ErrNoToken
	}
	client := github.NewClient(token, cfg, opts...)

	if err := github.ValidateToken(ctx, client); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	checkLatestVersion(ctx, client)
	return client, nil
}

func checkLatestVersion(ctx context.Context, client *github.Client) {
	if !utils.IsRelease() {
		return
	}
	current := utils.GetVersion()

	tag, err := client.LatestReleaseTag(ctx, "gnomegl", "contribreport")
	if err != nil {
		return
	}

	latest := strings.TrimPrefix(tag, "v")
	if latest != "" && latest != current {
		color.Yellow("[!] A new version of contribreport is available: %s (you're running %s)", latest, current)
		color.Cyan("    go install github.com/gnomegl/contribreport@latest")
	}
}
