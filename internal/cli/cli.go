// Package cli provides the command-line interface for wsa.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/klauern/workspace-architect/internal/config"
	"github.com/klauern/workspace-architect/internal/logging"
	"github.com/klauern/workspace-architect/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// app holds what the commands share for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)

	cfg    *config.Config
	cfgErr error
}

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, lookup: os.LookupEnv}
	return a.command().Run(ctx, args)
}

func (a *app) command() *cli.Command {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	return &cli.Command{
		Name:      "wsa",
		Usage:     "Sync and install GitHub Copilot instructions, prompts, agents, collections and skills",
		Version:   Version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to upstream.config.{yaml,yml,toml,json}",
				Sources: cli.EnvVars("WSA_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: text or json",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Also write JSON logs to this file, rotated by size",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			if err := loadDotenv(); err != nil {
				return ctx, err
			}
			a.loadConfig(cmd.String("config"))
			return ctx, a.configureLogging(cmd)
		},
		Commands: []*cli.Command{
			a.syncCommand(),
			a.listCommand(),
			a.validateCommand(),
			a.downloadCommand(),
			a.configCommand(),
			versionCommand(),
		},
	}
}

// loadDotenv reads .env from the working directory. Variables already set
// in the environment keep their values.
func loadDotenv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

// loadConfig resolves the configuration once. A load failure is kept and
// reported by the commands that need it, so version and help still work.
func (a *app) loadConfig(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		a.cfgErr = err
		cfg = config.Default()
	}
	cfg.ApplyEnvironment(a.lookup)
	a.cfg = cfg
}

func (a *app) config() (*config.Config, error) {
	if a.cfgErr != nil {
		return nil, a.cfgErr
	}
	return a.cfg, nil
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logger from the config file, environment and
// flags, in increasing precedence.
func (a *app) configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()
	opts.Output = a.stderr
	opts.NoColor = cmd.Bool("no-color")

	level, err := logging.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return err
	}
	opts.Level = level

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") && opts.Level > slog.LevelInfo {
		opts.Level = slog.LevelInfo
	}

	format := a.cfg.Logging.Format
	if cmd.IsSet("log-format") {
		format = cmd.String("log-format")
	}
	switch strings.ToLower(format) {
	case "", "text":
	case "json":
		opts.JSON = true
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", format)
	}

	opts.File = a.cfg.Logging.File
	if cmd.IsSet("log-file") {
		opts.File = cmd.String("log-file")
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}
