package cli

import (
	"github.com/gnomegl/contribreport/internal/config"
	"github.com/gnomegl/contribreport/internal/utils"
	"github.com/urfave/cli/v2"
)

const helpTemplate = `{{.Name}} - {{.Usage}}

Usage: {{.HelpName}} [options]

Options:
   {{range .VisibleFlags}}{{.}}
   {{end}}`

func NewApp(action cli.ActionFunc) *cli.App {
	cli.AppHelpTemplate = helpTemplate

	return &cli.App{
		Name:    "contribreport",
		Usage:   "Markdown report of who committed to a GitHub organization's repositories",
		Version: "v" + utils.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "GitHub personal access token (falls back to `gh auth token`)",
				EnvVars: []string{"GITHUB_TOKEN", "GH_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "org",
				Usage:   "Organization to scan, overriding the groups file",
				EnvVars: []string{"CONTRIB_REPORT_ORG"},
			},
			&cli.IntFlag{
				Name:    "days",
				Aliases: []string{"d"},
				Usage:   "Lookback window in days",
				Value:   config.DefaultDays,
			},
			&cli.StringFlag{
				Name:    "groups",
				Aliases: []string{"g"},
				Usage:   "Path to the groups YAML file",
				Value:   config.DefaultGroupsFile,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output Markdown path",
				Value:   config.DefaultOutput,
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Where commit counts come from: insights (weekly statistics) or commits (commit listing)",
				Value: string(config.SourceInsights),
			},
			&cli.IntFlag{
				Name:  "poll-seconds",
				Usage: "Poll for up to N seconds while GitHub is still computing statistics",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Logging level: debug, info, warn, error",
				Value:   "info",
				EnvVars: []string{"CONTRIB_REPORT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Usage:   "Cache directory",
				Value:   config.DefaultCacheDir,
				EnvVars: []string{"CONTRIB_REPORT_CACHE_DIR"},
			},
			&cli.IntFlag{
				Name:  "cache-ttl-seconds",
				Usage: "Cache TTL in seconds",
				Value: config.DefaultCacheTTLSeconds,
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable reading and writing the cache",
			},
		},
		Action: action,
		Authors: []*cli.Author{
			{Name: "gnomegl"},
		},
	}
}
