package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/workspace-architect/internal/config"
	"github.com/klauern/workspace-architect/internal/progress"
	"github.com/klauern/workspace-architect/internal/remote"
	"github.com/klauern/workspace-architect/internal/sync"
	"github.com/klauern/workspace-architect/internal/ui"
)

func (a *app) syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Mirror upstream assets into the local asset library",
		ArgsUsage: "<resource|all>",
		Description: `Sync one configured resource, or every resource with "all".

   Only files recorded by a previous sync are ever deleted, so files added
   by hand next to synced ones are left alone.

   Examples:
     wsa sync agents
     wsa sync --dry-run all`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			if cmd.Args().Len() != 1 {
				return errors.New("sync requires exactly 1 argument: <resource|all>")
			}

			resources, err := selectResources(cfg, cmd.Args().First())
			if err != nil {
				return err
			}

			github := remote.NewGitHub(remote.GitHubOptions{
				APIBase:   cfg.GitHub.APIBase,
				Token:     cfg.Token,
				UserAgent: "wsa/" + Version,
				Timeout:   cfg.GitHub.Timeout.Duration,
			})
			tracker := progress.NewTracker(a.stdout, a.stderr)

			results, runErr := sync.New(github).RunAll(ctx, resources, sync.Options{
				DryRun:   cmd.Bool("dry-run"),
				Progress: tracker.Handle,
			})

			for _, r := range results {
				fmt.Fprintln(a.stdout)
				fmt.Fprint(a.stdout, r.Summary())
			}
			fmt.Fprintln(a.stdout)
			for _, r := range results {
				fmt.Fprintln(a.stdout, ui.ResultLine(r))
			}
			return runErr
		},
	}
}

// selectResources resolves the sync argument to resources in sorted order.
func selectResources(cfg *config.Config, name string) ([]*config.Resource, error) {
	if name == "all" {
		if len(cfg.Resources) == 0 {
			return nil, errors.New("no resources configured")
		}
		resources := make([]*config.Resource, 0, len(cfg.Resources))
		for _, n := range cfg.ResourceNames() {
			resources = append(resources, cfg.Resources[n])
		}
		return resources, nil
	}
	r, err := cfg.Resource(name)
	if err != nil {
		return nil, err
	}
	return []*config.Resource{r}, nil
}

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the resolved configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, yaml, toml or json",
				Value:   "table",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			format := strings.ToLower(cmd.String("format"))
			if format != "table" {
				data, err := config.Encode(format, cfg)
				if err != nil {
					return err
				}
				_, err = a.stdout.Write(data)
				return err
			}

			source := cfg.Path
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(a.stdout, "Configuration: %s\n", source)
			fmt.Fprintf(a.stdout, "GitHub API: %s (timeout %s, token %s)\n",
				cfg.GitHub.APIBase, cfg.GitHub.Timeout.Duration, tokenState(cfg.Token))

			rows := make([][]string, 0, len(cfg.Resources))
			for _, name := range cfg.ResourceNames() {
				r := cfg.Resources[name]
				rows = append(rows, []string{
					name,
					r.Upstream(),
					relativeTo(cfg.BaseDir, r.TargetDir()),
					r.SyncMode,
					strconv.Itoa(len(r.SyncPatterns)),
				})
			}
			fmt.Fprintln(a.stdout, ui.Table([]string{"Resource", "Upstream", "Local", "Mode", "Patterns"}, rows))
			return nil
		},
	}
}

func tokenState(token string) string {
	if token == "" {
		return "not set"
	}
	return "set"
}

func relativeTo(base, p string) string {
	if base == "" {
		return p
	}
	rel, err := filepath.Rel(base, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return filepath.ToSlash(rel)
}
