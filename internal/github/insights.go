package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v57/github"

	"github.com/gnomegl/contribreport/internal/stats"
)

// Insights is the contributor statistics answer for one repository.
// Pending means GitHub was still computing the statistics when polling
// stopped; Stats is empty in that case.
type Insights struct {
	Stats   []stats.ContributorStat `json:"stats"`
	Pending bool                    `json:"pending"`
}

// FetchInsightsStats asks for the contributor statistics of repo. GitHub
// answers 202 while it computes them; the request is retried every
// PollInterval until poll has elapsed. A zero poll asks exactly once.
func (c *Client) FetchInsightsStats(ctx context.Context, repo *gh.Repository, poll time.Duration) (*Insights, error) {
	owner, name, err := SplitFullName(repo.GetFullName())
	if err != nil {
		return nil, err
	}

	deadline := c.clock.Now().Add(max(poll, 0))
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		raw, resp, err := c.listContributorsStats(ctx, owner, name)
		if err == nil {
			// Empty repositories answer 204 with no body.
			if resp != nil && resp.StatusCode == http.StatusNoContent {
				return &Insights{}, nil
			}
			return &Insights{Stats: stats.Normalize(raw)}, nil
		}

		var accepted *gh.AcceptedError
		if !errors.As(err, &accepted) {
			return nil, fmt.Errorf("error fetching contributor stats for %s: %w", repo.GetFullName(), err)
		}
		if !c.clock.Now().Before(deadline) {
			c.log.WithField("repo", repo.GetFullName()).Info("Insights pending (202)")
			return &Insights{Pending: true}, nil
		}

		c.log.WithField("repo", repo.GetFullName()).Debug("Contributor stats are being computed, waiting")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(c.cfg.PollInterval):
		}
	}
}

// listContributorsStats is ListContributorsStats decoded into the tolerant
// stats types, so one unreadable week is skipped instead of failing the repo.
func (c *Client) listContributorsStats(ctx context.Context, owner, name string) ([]*stats.APIContributor, *gh.Response, error) {
	u := fmt.Sprintf("repos/%v/%v/stats/contributors", owner, name)
	req, err := c.gh.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}

	var raw []*stats.APIContributor
	resp, err := c.gh.Do(ctx, req, &raw)
	if err != nil {
		return nil, resp, err
	}
	return raw, resp, nil
}
