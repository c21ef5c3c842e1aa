// Package cli implements the lifedash command line client.
//
// Every command except version is an "app open": the configuration is
// resolved, the local database opened, the saved identity restored, the
// server probed and the daily rollover run before the command body. Queued
// pushes are flushed when the command returns.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iudanet/lifedash/internal/client/app"
	"github.com/iudanet/lifedash/internal/client/iocli"
	"github.com/iudanet/lifedash/internal/config"
	"github.com/iudanet/lifedash/internal/logging"
)

// annotationStandalone marks commands that run without opening the app.
const annotationStandalone = "standalone"

// Options глобальные флаги CLI
type Options struct {
	ConfigPath string
	ServerURL  string
	DBPath     string
	LogLevel   string
	JSON       bool
}

// BuildInfo версия сборки для команды version
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Cli хранит состояние одного запуска клиента
type Cli struct {
	io     iocli.IO
	in     io.Reader
	app    *app.App
	logger *slog.Logger
	build  BuildInfo
	opts   Options
	appOpt []app.Option
}

// New creates the CLI writing to io.
func New(out iocli.IO, build BuildInfo, appOpts ...app.Option) *Cli {
	return &Cli{
		io:     out,
		in:     os.Stdin,
		build:  build,
		appOpt: appOpts,
	}
}

// SetInput replaces the reader used for "-" payloads.
func (c *Cli) SetInput(r io.Reader) {
	c.in = r
}

// Execute runs the command line args and closes the app afterwards.
func (c *Cli) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetIn(c.in)
	root.SetOut(c.io)
	root.SetErr(os.Stderr)

	err := root.ExecuteContext(ctx)

	if c.app != nil {
		if closeErr := c.app.Close(context.WithoutCancel(ctx)); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		c.app = nil
	}

	return err
}

// RootCommand builds the command tree.
func (c *Cli) RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifedash",
		Short:         "Personal dashboard with offline-first cloud sync",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationStandalone] != "" {
				return nil
			}
			return c.open(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "", "config file path (env "+config.EnvConfig+")")
	flags.StringVar(&c.opts.ServerURL, "server", "", "sync server URL")
	flags.StringVar(&c.opts.DBPath, "db", "", "path to the local database")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&c.opts.JSON, "json", false, "print machine-readable JSON")

	cmd.AddCommand(
		c.newVersionCmd(),
		c.newLoginCmd(),
		c.newGuestCmd(),
		c.newLogoutCmd(),
		c.newStatusCmd(),
		c.newGetCmd(),
		c.newSetCmd(),
		c.newTaskCmd(),
		c.newExpenseCmd(),
		c.newBudgetCmd(),
		c.newHabitCmd(),
		c.newHydrateCmd(),
		c.newWorkoutCmd(),
		c.newSleepCmd(),
		c.newSettingsCmd(),
		c.newRolloverCmd(),
		c.newSyncCmd(),
		c.newWatchCmd(),
	)

	return cmd
}

// open resolves the configuration, applies flag overrides and starts the app.
func (c *Cli) open(cmd *cobra.Command) error {
	cfg, err := config.Resolve(c.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.opts.ServerURL != "" {
		cfg.Client.ServerURL = c.opts.ServerURL
	}
	if c.opts.DBPath != "" {
		cfg.Client.DBPath = c.opts.DBPath
	}
	if c.opts.LogLevel != "" {
		cfg.Logging.Level = c.opts.LogLevel
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	c.logger, err = logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c.app, err = app.New(ctx, cfg, c.logger, c.appOpt...)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	report, err := c.app.Start(ctx)
	if err != nil {
		return err
	}
	if !report.Skipped {
		c.logger.Info("Daily rollover completed",
			"today", report.Today,
			"full_reset", report.FullReset,
			"archived_month", report.ArchivedMonth)
	}

	return nil
}

func (c *Cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{annotationStandalone: "true"},
		Args:        cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			c.io.Printf("lifedash client\n")
			c.io.Printf("Version:    %s\n", c.build.Version)
			c.io.Printf("Build Date: %s\n", c.build.BuildDate)
			c.io.Printf("Git Commit: %s\n", c.build.GitCommit)
		},
	}
}
