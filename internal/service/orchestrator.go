package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	gh "github.com/google/go-github/v57/github"
	"github.com/jonboulle/clockwork"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/gnomegl/contribreport/internal/cache"
	"github.com/gnomegl/contribreport/internal/config"
	"github.com/gnomegl/contribreport/internal/display"
	"github.com/gnomegl/contribreport/internal/github"
	"github.com/gnomegl/contribreport/internal/report"
	"github.com/gnomegl/contribreport/internal/stats"
)

// Source is the part of the GitHub client the report needs.
type Source interface {
	FetchOrgRepos(ctx context.Context, org string, skipForks, skipArchived bool) ([]*gh.Repository, error)
	ResolveRepo(ctx context.Context, org, entry string, idx *github.RepoIndex) (*gh.Repository, error)
	FetchInsightsStats(ctx context.Context, repo *gh.Repository, poll time.Duration) (*github.Insights, error)
	FetchCodeowners(ctx context.Context, repo *gh.Repository) (string, error)
	FetchCommitAuthors(ctx context.Context, repo *gh.Repository, since, until time.Time) ([]stats.CommitAuthor, error)
	RateLimit(ctx context.Context) (*github.RateLimitInfo, error)
}

type window struct {
	Since time.Time
	Until time.Time
}

type Orchestrator struct {
	client   Source
	config   *config.AppConfig
	store    *cache.Store
	log      logrus.FieldLogger
	clock    clockwork.Clock
	progress bool
	stdout   io.Writer

	fetchStats      cache.Fetcher[*gh.Repository, time.Duration, *github.Insights]
	fetchCodeowners cache.Fetcher[*gh.Repository, struct{}, string]
	fetchCommits    cache.Fetcher[*gh.Repository, window, []stats.CommitAuthor]
}

type Option func(*Orchestrator)

// WithOutput sets where the end-of-run summary is printed.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.stdout = w }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = log }
}

func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithProgress forces the progress bar on or off. By default it is shown
// only when stderr is a terminal.
func WithProgress(show bool) Option {
	return func(o *Orchestrator) { o.progress = show }
}

// NewOrchestrator wires the client to the cache. A nil store disables
// caching.
func NewOrchestrator(client Source, cfg *config.AppConfig, store *cache.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		config:   cfg,
		store:    store,
		log:      logrus.StandardLogger(),
		clock:    clockwork.NewRealClock(),
		progress: term.IsTerminal(int(os.Stderr.Fd())),
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}

	byFullName := func(r *gh.Repository) string { return r.GetFullName() }

	o.fetchStats = cache.Memoize("stats", cfg.CacheTTL, byFullName,
		func(ctx context.Context, repo *gh.Repository, _ *cache.Store, poll time.Duration) (*github.Insights, error) {
			return client.FetchInsightsStats(ctx, repo, poll)
		},
		cache.SkipWhen(func(i *github.Insights) bool { return i.Pending }),
	)
	o.fetchCodeowners = cache.Memoize("codeowners", cfg.CacheTTL, byFullName,
		func(ctx context.Context, repo *gh.Repository, _ *cache.Store, _ struct{}) (string, error) {
			return client.FetchCodeowners(ctx, repo)
		},
	)
	o.fetchCommits = cache.Memoize(fmt.Sprintf("commits-%dd", cfg.Days), cfg.CacheTTL, byFullName,
		func(ctx context.Context, repo *gh.Repository, _ *cache.Store, w window) ([]stats.CommitAuthor, error) {
			return client.FetchCommitAuthors(ctx, repo, w.Since, w.Until)
		},
	)
	return o
}

// Run builds the report and writes it to the configured output path.
func (o *Orchestrator) Run(ctx context.Context) error {
	groups := o.config.Groups
	if groups == nil {
		groups = config.DefaultGroups()
	}
	now := o.clock.Now().UTC()

	o.log.WithFields(logrus.Fields{
		"org":           o.config.Org,
		"include_bots":  groups.IncludeBots,
		"skip_forks":    groups.SkipForks,
		"skip_archived": groups.SkipArchived,
		"source":        o.config.Source,
	}).Info("Starting contributor report")

	repos, err := o.client.FetchOrgRepos(ctx, o.config.Org, groups.SkipForks, groups.SkipArchived)
	if err != nil {
		color.Red("[x] Error: %v", err)
		return err
	}
	color.Green("[+] Found %d repositories in %s", len(repos), o.config.Org)

	idx := github.NewRepoIndex(repos)
	names := make([]string, 0, len(groups.Groups))
	entries := 0
	for name, list := range groups.Groups {
		names = append(names, name)
		entries += len(list)
	}
	sort.Strings(names)

	bar := o.newBar(entries)
	out := &report.Report{
		Org:          o.config.Org,
		Days:         o.config.Days,
		GeneratedAt:  now,
		Source:       string(o.config.Source),
		IncludeBots:  groups.IncludeBots,
		SkipForks:    groups.SkipForks,
		SkipArchived: groups.SkipArchived,
	}
	seen := make(map[string]bool)
	pending := make(map[string]bool)
	failed := 0

	for _, name := range names {
		group := report.Group{Name: name}
		for _, entry := range groups.Groups[name] {
			_ = bar.Add(1)

			repo, err := o.client.ResolveRepo(ctx, o.config.Org, entry, idx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.log.WithError(err).WithField("group", name).Warnf("Repo not found or filtered: %s", entry)
				failed++
				continue
			}
			seen[repo.GetFullName()] = true

			section, isPending, err := o.processRepo(ctx, repo, now, groups.IncludeBots)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				o.log.WithError(err).Warnf("Skipping %s", repo.GetFullName())
				failed++
				continue
			}
			if isPending {
				pending[repo.GetFullName()] = true
			}
			group.Repos = append(group.Repos, section)
		}
		out.Groups = append(out.Groups, group)
	}

	var others []*gh.Repository
	for _, repo := range repos {
		if !seen[repo.GetFullName()] {
			others = append(others, repo)
		}
	}
	bar.ChangeMax(entries + len(others))

	for _, repo := range others {
		_ = bar.Add(1)

		section, isPending, err := o.processRepo(ctx, repo, now, groups.IncludeBots)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.log.WithError(err).Warnf("Skipping %s", repo.GetFullName())
			failed++
			continue
		}
		if isPending {
			pending[repo.GetFullName()] = true
		}
		out.Others = append(out.Others, section)
	}
	_ = bar.Finish()

	for name := range pending {
		out.Pending = append(out.Pending, name)
	}
	sort.Strings(out.Pending)

	if err := report.WriteFile(o.config.OutPath, out); err != nil {
		color.Red("[x] Error: %v", err)
		return err
	}

	color.Green("[+] Wrote %s", o.config.OutPath)
	display.Summary(o.stdout, out, display.DefaultTop)
	if len(out.Pending) > 0 {
		color.Yellow("[!] Statistics still computing for %d repositories, rerun later or raise --poll-seconds", len(out.Pending))
	}
	if failed > 0 {
		color.Yellow("[!] %d repositories could not be reported, see warnings above", failed)
	}
	o.logRateLimit(ctx)
	return nil
}

// processRepo gathers one repository's table. Pending is true when the
// statistics were still being computed.
func (o *Orchestrator) processRepo(ctx context.Context, repo *gh.Repository, now time.Time, includeBots bool) (report.Repo, bool, error) {
	section := report.Repo{FullName: repo.GetFullName()}
	isPending := false

	switch o.config.Source {
	case config.SourceCommits:
		w := window{Since: stats.Cutoff(now, o.config.Days), Until: now}
		authors, err := o.fetchCommits(ctx, repo, o.store, w)
		if err != nil {
			return section, false, err
		}
		section.Rows = stats.CountCommits(authors, includeBots, true)
	default:
		insights, err := o.fetchStats(ctx, repo, o.store, o.config.Poll)
		if err != nil {
			return section, false, err
		}
		if insights == nil {
			return section, false, errors.New("empty statistics response")
		}
		isPending = insights.Pending
		section.Rows = stats.Summarize(insights.Stats, now, o.config.Days, includeBots)
	}

	content, err := o.fetchCodeowners(ctx, repo, o.store, struct{}{})
	if err != nil {
		return section, false, err
	}
	section.Owners = github.ParseDefaultOwners(content)

	entry := o.log.WithFields(logrus.Fields{
		"repo":    repo.GetFullName(),
		"commits": stats.Total(section.Rows),
	})
	if isPending {
		entry.Info("Repo processed (pending)")
	} else {
		entry.Info("Repo processed")
	}
	return section, isPending, nil
}

func (o *Orchestrator) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetVisibility(o.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSetDescription("[cyan]Collecting contributors[reset]"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]#[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (o *Orchestrator) logRateLimit(ctx context.Context) {
	info, err := o.client.RateLimit(ctx)
	if err != nil {
		o.log.WithError(err).Debug("Could not read rate limit")
		return
	}
	color.Blue("API rate limit: %d/%d remaining", info.Remaining, info.Limit)
}
