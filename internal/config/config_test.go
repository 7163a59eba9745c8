package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	appcli "github.com/gnomegl/contribreport/internal/cli"
	"github.com/gnomegl/contribreport/internal/config"
)

func parse(t *testing.T, args ...string) (*config.AppConfig, error) {
	t.Helper()
	var (
		cfg *config.AppConfig
		err error
	)
	app := appcli.NewApp(func(c *cli.Context) error {
		cfg, err = config.ParseConfig(c)
		return nil
	})
	require.NoError(t, app.Run(append([]string{"contribreport"}, args...)))
	return cfg, err
}

func TestParseConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, "eclipse-score", cfg.Org)
	assert.Equal(t, 180, cfg.Days)
	assert.Equal(t, "contrib_report.yaml", cfg.GroupsPath)
	assert.Equal(t, "contributors_groups.md", cfg.OutPath)
	assert.Equal(t, time.Duration(0), cfg.Poll)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ".cache", cfg.CacheDir)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.NoCache)
	assert.Equal(t, config.SourceInsights, cfg.Source)
	assert.Equal(t, config.DefaultGroups(), cfg.Groups)
}

func TestParseConfig_Flags(t *testing.T) {
	dir := t.TempDir()
	groups := filepath.Join(dir, "groups.yaml")
	require.NoError(t, os.WriteFile(groups, []byte("org: acme\ngroups:\n  core: [widget]\n"), 0o644))

	cfg, err := parse(t,
		"--groups", groups,
		"--days", "30",
		"--poll-seconds", "60",
		"--log-level", "DEBUG",
		"--cache-ttl-seconds", "0",
		"--no-cache",
		"--source", "Commits",
	)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, 30, cfg.Days)
	assert.Equal(t, time.Minute, cfg.Poll)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.CacheTTL)
	assert.True(t, cfg.NoCache)
	assert.Equal(t, config.SourceCommits, cfg.Source)
	assert.Equal(t, map[string][]string{"core": {"widget"}}, cfg.Groups.Groups)

	cfg, err = parse(t, "--groups", groups, "--org", "other")
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Org)
}

func TestParseConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	for _, args := range [][]string{
		{"--days", "0"},
		{"--days", "-5"},
		{"--cache-ttl-seconds", "-1"},
		{"--poll-seconds", "-1"},
		{"--source", "graphql"},
		{"--log-level", "loud"},
		{"--out", ""},
	} {
		_, err := parse(t, args...)
		assert.ErrorIs(t, err, config.ErrInvalidConfig, args)
	}
}

func TestParseConfig_BrokenGroupsFile(t *testing.T) {
	dir := t.TempDir()
	groups := filepath.Join(dir, "groups.yaml")
	require.NoError(t, os.WriteFile(groups, []byte("groups: [unclosed"), 0o644))

	_, err := parse(t, "--groups", groups)
	assert.ErrorContains(t, err, "parse groups file")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
