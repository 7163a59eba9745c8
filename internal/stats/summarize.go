package stats

import (
	"sort"
	"strings"
	"time"
)

const day = 24 * time.Hour

// DisplayName is "@login" for known accounts, "user" for resolved accounts
// without a login and "anonymous" when there is no account at all.
func DisplayName(u *User) string {
	if u == nil {
		return "anonymous"
	}
	if u.Login != "" {
		return "@" + u.Login
	}
	return "user"
}

// IsBot applies the same rule to every source: the account type is Bot, or
// the login ends in "[bot]", or (for authors without an account) the display
// name ends in "[bot]". Missing signals mean human.
func IsBot(u *User, display string) bool {
	if u != nil {
		return u.Type == BotType || strings.HasSuffix(u.Login, botSuffix)
	}
	return strings.HasSuffix(strings.TrimSpace(display), botSuffix)
}

// Cutoff is the earliest bucket start counted for a window ending at now.
func Cutoff(now time.Time, windowDays int) time.Time {
	return now.UTC().Add(-time.Duration(windowDays) * day)
}

// Summarize sums each contributor's buckets starting at or after
// now - windowDays and returns the non-zero totals, highest first.
func Summarize(in []ContributorStat, now time.Time, windowDays int, includeBots bool) []Row {
	cutoff := Cutoff(now, windowDays)
	rows := make([]Row, 0, len(in))

	for _, s := range in {
		display := DisplayName(s.User)
		if !includeBots && IsBot(s.User, display) {
			continue
		}

		var uid int64
		if s.User != nil {
			uid = s.User.ID
		}

		commits := 0
		for _, w := range s.Weeks {
			if !w.Valid() {
				continue
			}
			if !w.Time().Before(cutoff) {
				commits += w.Commits
			}
		}

		if commits > 0 {
			rows = append(rows, Row{Display: display, UID: uid, Commits: commits})
		}
	}

	Sort(rows)
	return rows
}

// Sort orders rows by commits descending, then display name ignoring case.
// Exact display and uid break any remaining ties so the order is total.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		la, lb := strings.ToLower(a.Display), strings.ToLower(b.Display)
		if la != lb {
			return la < lb
		}
		if a.Display != b.Display {
			return a.Display < b.Display
		}
		return a.UID < b.UID
	})
}

// Total is the sum of commits over rows.
func Total(rows []Row) int {
	n := 0
	for _, r := range rows {
		n += r.Commits
	}
	return n
}

// Rollup merges per-repository rows into one group ranking keyed by display
// name.
func Rollup(perRepo ...[]Row) []Row {
	index := make(map[string]int)
	var out []Row
	for _, rows := range perRepo {
		for _, r := range rows {
			if i, ok := index[r.Display]; ok {
				out[i].Commits += r.Commits
				if out[i].UID == 0 {
					out[i].UID = r.UID
				}
				continue
			}
			index[r.Display] = len(out)
			out = append(out, r)
		}
	}
	Sort(out)
	return out
}
