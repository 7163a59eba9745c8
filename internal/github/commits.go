package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v57/github"

	"github.com/gnomegl/contribreport/internal/stats"
)

// FetchCommitAuthors lists the commits on the default branch between since
// and until and reduces each one to its author identity.
func (c *Client) FetchCommitAuthors(ctx context.Context, repo *gh.Repository, since, until time.Time) ([]stats.CommitAuthor, error) {
	owner, name, err := SplitFullName(repo.GetFullName())
	if err != nil {
		return nil, err
	}

	var authors []stats.CommitAuthor
	opt := &gh.CommitsListOptions{
		Since:       since,
		Until:       until,
		ListOptions: gh.ListOptions{PerPage: c.cfg.PerPage},
	}

	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opt)
		if err != nil {
			// Empty repositories answer 409.
			if resp != nil && resp.StatusCode == http.StatusConflict {
				return nil, nil
			}
			return nil, fmt.Errorf("error fetching commits for %s: %w", repo.GetFullName(), err)
		}
		for _, commit := range commits {
			if commit == nil {
				continue
			}
			authors = append(authors, toCommitAuthor(commit))
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return authors, nil
}

func toCommitAuthor(commit *gh.RepositoryCommit) stats.CommitAuthor {
	author := stats.CommitAuthor{Parents: len(commit.Parents)}
	if u := commit.GetAuthor(); u != nil {
		author.User = &stats.User{Login: u.GetLogin(), ID: u.GetID(), Type: u.GetType()}
	}
	if inner := commit.GetCommit(); inner != nil {
		author.Message = inner.GetMessage()
		if a := inner.GetAuthor(); a != nil {
			author.Name = a.GetName()
			author.Email = a.GetEmail()
		}
	}
	return author
}
