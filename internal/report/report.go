// Package report renders the contributor report as GitHub-flavored Markdown.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gnomegl/contribreport/internal/stats"
)

// Repo is one repository's table: its contributors in the window and the
// owners of its catch-all CODEOWNERS rule.
type Repo struct {
	FullName string
	Rows     []stats.Row
	Owners   []string
}

type Group struct {
	Name  string
	Repos []Repo
}

type Report struct {
	Org          string
	Days         int
	GeneratedAt  time.Time
	Source       string
	IncludeBots  bool
	SkipForks    bool
	SkipArchived bool
	Groups       []Group
	Others       []Repo
	Pending      []string
}

var sources = map[string]struct{ title, line string }{
	"insights": {"Insights API", "`/stats/contributors` (weekly buckets)"},
	"commits":  {"Commits API", "`/commits` (default branch, merges skipped)"},
}

// Render writes r as Markdown. Groups, repositories and pending names are
// sorted so the output does not depend on discovery order.
func Render(w io.Writer, r *Report) error {
	src, ok := sources[r.Source]
	if !ok {
		src = sources["insights"]
	}

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("# Contributors in the last ~%d days (%s)\n", r.Days, src.title)
	add("_Generated: %s_\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	add("- Org: `%s`", r.Org)
	add("- Source: %s", src.line)
	add("- Bots: **%s**", choose(r.IncludeBots, "included", "excluded"))
	add("- Forks: **%s**, Archived: **%s**\n",
		choose(r.SkipForks, "skipped", "included"), choose(r.SkipArchived, "skipped", "included"))

	if len(r.Pending) > 0 {
		add("> ⚠️ Insights still computing for:")
		pending := append([]string(nil), r.Pending...)
		sort.Strings(pending)
		for _, name := range pending {
			add("> - %s", name)
		}
		add("")
	}

	groups := append([]Group(nil), r.Groups...)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	for _, g := range groups {
		perRepo := make([][]stats.Row, 0, len(g.Repos))
		for _, repo := range g.Repos {
			perRepo = append(perRepo, repo.Rows)
		}

		add("## Group: %s (roll-up)", g.Name)
		if roll := stats.Rollup(perRepo...); len(roll) > 0 {
			lines = append(lines, table(roll)...)
			add("")
		} else {
			add("_No commits for this group in the selected window._\n")
		}

		add("### %s – per repository", g.Name)
		for _, repo := range sortedRepos(g.Repos) {
			lines = append(lines, repoSection("####", repo)...)
		}
	}

	add("## Others – ungrouped repositories")
	if len(r.Others) == 0 {
		add("_No ungrouped repositories (after filters)._ \n")
	} else {
		for _, repo := range sortedRepos(r.Others) {
			lines = append(lines, repoSection("###", repo)...)
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// WriteFile renders r to path, creating parent directories as needed.
func WriteFile(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}

	var b strings.Builder
	if err := Render(&b, r); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

func repoSection(heading string, repo Repo) []string {
	lines := []string{heading + " " + repo.FullName}
	if len(repo.Owners) > 0 {
		lines = append(lines, fmt.Sprintf("**CODEOWNERS** (`*`): %s", strings.Join(repo.Owners, " ")))
	} else {
		lines = append(lines, "**CODEOWNERS**: _none or file missing_")
	}
	if len(repo.Rows) == 0 {
		return append(lines, "\n_No commits in this period (or stats pending)._ \n")
	}
	lines = append(lines, "")
	lines = append(lines, table(repo.Rows)...)
	return append(lines, "")
}

func table(rows []stats.Row) []string {
	lines := []string{"| # | Contributor | Commits |", "|---:|---|---:|"}
	for i, row := range rows {
		lines = append(lines, fmt.Sprintf("| %d | %s | %d |", i+1, row.Display, row.Commits))
	}
	return lines
}

func sortedRepos(repos []Repo) []Repo {
	out := append([]Repo(nil), repos...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func choose(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
