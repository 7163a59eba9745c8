package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"
)

// FetchOrgRepos lists every repository in an organization, optionally
// dropping forks and archived repositories.
func (c *Client) FetchOrgRepos(ctx context.Context, orgName string, skipForks, skipArchived bool) ([]*gh.Repository, error) {
	var allRepos []*gh.Repository
	opt := &gh.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: gh.ListOptions{PerPage: c.cfg.PerPage},
	}

	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, orgName, opt)
		if err != nil {
			return nil, fmt.Errorf("error fetching repositories for %s: %w", orgName, err)
		}
		for _, repo := range repos {
			if repo == nil {
				continue
			}
			if skipForks && repo.GetFork() {
				continue
			}
			if skipArchived && repo.GetArchived() {
				continue
			}
			allRepos = append(allRepos, repo)
		}
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	c.log.WithField("org", orgName).Debugf("Found %d repositories", len(allRepos))
	return allRepos, nil
}

// SplitFullName splits "owner/name" into its parts.
func SplitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid repository name %q, expected owner/name", fullName)
	}
	return owner, name, nil
}

// RepoIndex finds already-listed repositories by short or full name.
type RepoIndex struct {
	byName map[string]*gh.Repository
	byFull map[string]*gh.Repository
}

func NewRepoIndex(repos []*gh.Repository) *RepoIndex {
	idx := &RepoIndex{
		byName: make(map[string]*gh.Repository, len(repos)),
		byFull: make(map[string]*gh.Repository, len(repos)),
	}
	for _, repo := range repos {
		idx.byName[repo.GetName()] = repo
		idx.byFull[repo.GetFullName()] = repo
	}
	return idx
}

// ResolveRepo turns a group entry into a repository. "owner/name" is looked
// up by full name, a bare name inside org. Entries missing from the index
// (filtered out, or in another org) fall back to a direct lookup.
func (c *Client) ResolveRepo(ctx context.Context, org, entry string, idx *RepoIndex) (*gh.Repository, error) {
	entry = strings.TrimSpace(entry)
	full := entry
	var known *gh.Repository
	if strings.Contains(entry, "/") {
		if idx != nil {
			known = idx.byFull[entry]
		}
	} else {
		full = org + "/" + entry
		if idx != nil {
			known = idx.byName[entry]
		}
	}
	if known != nil {
		return known, nil
	}

	owner, name, err := SplitFullName(full)
	if err != nil {
		return nil, err
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("repository %s not found: %w", full, ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching repository %s: %w", full, err)
	}
	return repo, nil
}
