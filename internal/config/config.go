package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gnomegl/contribreport/internal/cache"
)

const (
	DefaultDays            = 180
	DefaultGroupsFile      = "contrib_report.yaml"
	DefaultOutput          = "contributors_groups.md"
	DefaultCacheDir        = ".cache"
	DefaultCacheTTLSeconds = int(cache.DefaultTTL / time.Second)
)

// Source selects where commit counts come from.
type Source string

const (
	SourceInsights Source = "insights"
	SourceCommits  Source = "commits"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type AppConfig struct {
	Org        string
	Days       int
	GroupsPath string
	OutPath    string
	Poll       time.Duration
	LogLevel   logrus.Level
	CacheDir   string
	CacheTTL   time.Duration
	NoCache    bool
	Source     Source

	Groups *GroupsFile
}

// ParseConfig reads the command line flags and the groups file they point to.
// A --org flag overrides the org named in the groups file.
func ParseConfig(c *cli.Context) (*AppConfig, error) {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &AppConfig{
		Days:       c.Int("days"),
		GroupsPath: c.String("groups"),
		OutPath:    c.String("out"),
		Poll:       time.Duration(c.Int("poll-seconds")) * time.Second,
		LogLevel:   level,
		CacheDir:   c.String("cache-dir"),
		CacheTTL:   time.Duration(c.Int("cache-ttl-seconds")) * time.Second,
		NoCache:    c.Bool("no-cache"),
		Source:     Source(strings.ToLower(c.String("source"))),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	groups, err := LoadGroups(cfg.GroupsPath)
	if err != nil {
		return nil, err
	}
	cfg.Groups = groups

	cfg.Org = groups.Org
	if org := strings.TrimSpace(c.String("org")); org != "" {
		cfg.Org = org
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("%w: --days must be positive, got %d", ErrInvalidConfig, c.Days)
	}
	if c.Poll < 0 {
		return fmt.Errorf("%w: --poll-seconds must not be negative", ErrInvalidConfig)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: --cache-ttl-seconds must not be negative", ErrInvalidConfig)
	}
	if c.OutPath == "" {
		return fmt.Errorf("%w: --out must not be empty", ErrInvalidConfig)
	}
	if !c.NoCache && c.CacheDir == "" {
		return fmt.Errorf("%w: --cache-dir must not be empty", ErrInvalidConfig)
	}
	switch c.Source {
	case SourceInsights, SourceCommits:
	default:
		return fmt.Errorf("%w: unknown --source %q (want insights or commits)", ErrInvalidConfig, c.Source)
	}
	return nil
}
