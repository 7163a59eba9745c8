package main

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gnomegl/contribreport/internal/auth"
	"github.com/gnomegl/contribreport/internal/cache"
	appcli "github.com/gnomegl/contribreport/internal/cli"
	"github.com/gnomegl/contribreport/internal/config"
	"github.com/gnomegl/contribreport/internal/github"
	"github.com/gnomegl/contribreport/internal/service"
)

func configureLogging(level logrus.Level) {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

func runApp(c *cli.Context) error {
	cfg, err := config.ParseConfig(c)
	if err != nil {
		return err
	}
	configureLogging(cfg.LogLevel)

	ctx := c.Context
	client, err := auth.SetupGitHubClient(ctx, c, github.DefaultConfig())
	if err != nil {
		return err
	}

	var store *cache.Store
	if !cfg.NoCache {
		store = cache.New(cfg.CacheDir)
		logrus.WithField("dir", store.Root()).Debug("Cache enabled")
	}

	return service.NewOrchestrator(client, cfg, store).Run(ctx)
}

func main() {
	// Flags read the environment, so .env files load first.
	if err := config.LoadEnvFiles(); err != nil {
		log.Fatal(err)
	}

	app := appcli.NewApp(runApp)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
