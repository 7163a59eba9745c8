// Package stats turns weekly contributor buckets (or raw commit authors)
// into ranked per-contributor commit counts.
package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

const (
	// BotType is the account type GitHub reports for apps and bots.
	BotType   = "Bot"
	botSuffix = "[bot]"
)

// User is a resolved platform identity. Any field may be empty.
type User struct {
	Login string `json:"login,omitempty"`
	ID    int64  `json:"id,omitempty"`
	Type  string `json:"type,omitempty"`
}

// ContributorStat is one contributor's weekly buckets for one repository.
// A nil User means the author could not be resolved to an account.
type ContributorStat struct {
	User  *User  `json:"user"`
	Weeks []Week `json:"weeks"`
}

// Week is a single weekly bucket. Start is nil when the source timestamp
// could not be read as epoch seconds; such buckets are never counted.
type Week struct {
	Start   *int64
	Commits int
	invalid bool
}

type weekJSON struct {
	W *int64 `json:"w"`
	C int    `json:"c"`
}

func (w Week) MarshalJSON() ([]byte, error) {
	return json.Marshal(weekJSON{W: w.Start, C: w.Commits})
}

// UnmarshalJSON accepts integers, integral floats and numeric strings for
// both fields. Anything else leaves the bucket unusable instead of failing
// the whole document.
func (w *Week) UnmarshalJSON(data []byte) error {
	var raw struct {
		W json.RawMessage `json:"w"`
		C json.RawMessage `json:"c"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*w = Week{}
	if start, ok := parseInt(raw.W); ok {
		w.Start = &start
	}
	if len(raw.C) == 0 || bytes.Equal(raw.C, []byte("null")) {
		return nil
	}
	commits, ok := parseInt(raw.C)
	if !ok || commits < 0 || commits > math.MaxInt32 {
		w.invalid = true
		return nil
	}
	w.Commits = int(commits)
	return nil
}

func parseInt(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Valid reports whether the bucket can be counted.
func (w Week) Valid() bool {
	return w.Start != nil && !w.invalid && w.Commits >= 0
}

// Time returns the bucket start in UTC. Callers check Valid first.
func (w Week) Time() time.Time {
	if w.Start == nil {
		return time.Time{}
	}
	return time.Unix(*w.Start, 0).UTC()
}

// NewWeek is a convenience for building buckets in code.
func NewWeek(start time.Time, commits int) Week {
	s := start.Unix()
	return Week{Start: &s, Commits: commits}
}

// Row is one ranked contributor.
type Row struct {
	Display string `json:"display"`
	UID     int64  `json:"uid"`
	Commits int    `json:"commits"`
}

// CommitAuthor is the part of a commit the commits source needs.
type CommitAuthor struct {
	User    *User  `json:"user,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
	Parents int    `json:"parents,omitempty"`
}

// APIContributor is one element of the /stats/contributors response, decoded
// with the same tolerant Week decoder the cache uses.
type APIContributor struct {
	Author *User  `json:"author"`
	Weeks  []Week `json:"weeks"`
}

// Normalize converts the Insights response into the form that is cached and
// summarized.
func Normalize(in []*APIContributor) []ContributorStat {
	out := make([]ContributorStat, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		weeks := s.Weeks
		if weeks == nil {
			weeks = []Week{}
		}
		out = append(out, ContributorStat{User: s.Author, Weeks: weeks})
	}
	return out
}
