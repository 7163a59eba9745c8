package stats

import (
	"fmt"
	"strings"
)

type authorKey struct {
	uid     int64
	display string
}

// AuthorDisplay names a commit author: "@login" when linked to an account,
// the account name (or "User") for accounts without a login, otherwise the
// raw "Name <email>" from the commit.
func AuthorDisplay(c CommitAuthor) string {
	if c.User != nil {
		if c.User.Login != "" {
			return "@" + c.User.Login
		}
		if name := strings.TrimSpace(c.Name); name != "" {
			return name
		}
		return "User"
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Anonymous"
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		return fmt.Sprintf("%s <%s>", name, email)
	}
	return name
}

// IsMerge reports whether a commit is a merge, by parent count or by the
// "Merge" message prefix GitHub uses.
func IsMerge(c CommitAuthor) bool {
	return c.Parents > 1 || strings.HasPrefix(c.Message, "Merge")
}

// CountCommits tallies commits per author. The caller has already restricted
// commits to the window.
func CountCommits(commits []CommitAuthor, includeBots, skipMerges bool) []Row {
	counts := make(map[authorKey]int)
	var order []authorKey

	for _, c := range commits {
		if skipMerges && IsMerge(c) {
			continue
		}

		display := AuthorDisplay(c)
		// Anonymous authors are matched on the raw name, before the email
		// is appended.
		probe := display
		if c.User == nil {
			probe = c.Name
		}
		if !includeBots && IsBot(c.User, probe) {
			continue
		}

		key := authorKey{display: display}
		if c.User != nil {
			key.uid = c.User.ID
		}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	rows := make([]Row, 0, len(order))
	for _, k := range order {
		rows = append(rows, Row{Display: k.display, UID: k.uid, Commits: counts[k]})
	}
	Sort(rows)
	return rows
}
