package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"
)

// FetchCodeowners returns the text of the first CODEOWNERS file found in the
// usual locations, or "" when the repository has none.
func (c *Client) FetchCodeowners(ctx context.Context, repo *gh.Repository) (string, error) {
	owner, name, err := SplitFullName(repo.GetFullName())
	if err != nil {
		return "", err
	}

	for _, path := range c.cfg.CodeownersPaths {
		if err := c.wait(ctx); err != nil {
			return "", err
		}
		file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
		if err != nil {
			if isNotFound(resp) {
				continue
			}
			return "", fmt.Errorf("error fetching %s from %s: %w", path, repo.GetFullName(), err)
		}
		// A directory at this path is not a CODEOWNERS file.
		if file == nil {
			continue
		}
		content, err := file.GetContent()
		if err != nil {
			return "", fmt.Errorf("error decoding %s from %s: %w", path, repo.GetFullName(), err)
		}
		return content, nil
	}
	return "", nil
}

// ParseDefaultOwners returns the owners of the catch-all "*" rule. When the
// file has several, the last one wins, as on GitHub. Nil means no such rule.
func ParseDefaultOwners(content string) []string {
	var owners []string
	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != "*" {
			continue
		}
		owners = append([]string{}, fields[1:]...)
	}
	return owners
}
