// Package display prints the end-of-run summary to the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/gnomegl/contribreport/internal/report"
	"github.com/gnomegl/contribreport/internal/stats"
)

var headerColor = color.New(color.Bold, color.FgCyan)

// DefaultTop is how many contributors the summary lists.
const DefaultTop = 10

type terminalInfo struct {
	width      int
	graphWidth int
}

func getTerminalInfo() *terminalInfo {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	return &terminalInfo{
		width:      width,
		graphWidth: min(max(width-50, 10), 40),
	}
}

// Summary prints org-wide totals and the top contributors across every
// repository in r.
func Summary(w io.Writer, r *report.Report, top int) {
	termInfo := getTerminalInfo()

	var perRepo [][]stats.Row
	repos := 0
	for _, g := range r.Groups {
		for _, repo := range g.Repos {
			perRepo = append(perRepo, repo.Rows)
			repos++
		}
	}
	for _, repo := range r.Others {
		perRepo = append(perRepo, repo.Rows)
		repos++
	}
	rows := stats.Rollup(perRepo...)

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("-", min(termInfo.width, 60)))
	fmt.Fprintf(w, "%s %s\n", color.WhiteString("Organization:"), r.Org)
	fmt.Fprintf(w, "%s %d days\n", color.WhiteString("Window:"), r.Days)
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Repositories:"), repos)
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Contributors:"), len(rows))
	fmt.Fprintf(w, "%s %d\n", color.WhiteString("Commits:"), stats.Total(rows))
	if len(r.Pending) > 0 {
		fmt.Fprintf(w, "%s %d\n", color.YellowString("Pending:"), len(r.Pending))
	}

	if len(rows) == 0 || top <= 0 {
		return
	}
	if len(rows) > top {
		rows = rows[:top]
	}

	fmt.Fprintln(w)
	headerColor.Fprintln(w, "TOP CONTRIBUTORS")
	maxCommits := rows[0].Commits
	nameWidth := 0
	for _, row := range rows {
		nameWidth = max(nameWidth, utf8.RuneCountInString(row.Display))
	}
	nameWidth = min(nameWidth, 32)

	for i, row := range rows {
		barLength := 1
		if maxCommits > 0 {
			barLength = max(1, row.Commits*termInfo.graphWidth/maxCommits)
		}
		fmt.Fprintf(w, "%3d. %-*s %6d %s\n", i+1, nameWidth, truncate(row.Display, nameWidth),
			row.Commits, color.GreenString(strings.Repeat("#", barLength)))
	}
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
