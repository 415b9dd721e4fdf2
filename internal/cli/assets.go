package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/workspace-architect/internal/catalog"
	"github.com/klauern/workspace-architect/internal/install"
	"github.com/klauern/workspace-architect/internal/model"
	"github.com/klauern/workspace-architect/internal/security"
	"github.com/klauern/workspace-architect/internal/ui"
	"github.com/klauern/workspace-architect/internal/validation"
)

// libraryTypes are the types list and validate cover by default.
var libraryTypes = []model.ResourceType{
	model.ResourceInstructions,
	model.ResourcePrompts,
	model.ResourceAgents,
	model.ResourceSkills,
	model.ResourceCollections,
}

func typeNames() string {
	names := make([]string, len(libraryTypes))
	for i, t := range libraryTypes {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

// parseTypes reads an optional type argument.
func parseTypes(arg string) ([]model.ResourceType, error) {
	if arg == "" {
		return libraryTypes, nil
	}
	t, err := model.ParseResourceType(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid type: %s. Valid types are: %s", arg, typeNames())
	}
	return []model.ResourceType{t}, nil
}

func (a *app) library() (*catalog.Library, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return catalog.FromConfig(cfg), nil
}

func (a *app) listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List installed assets",
		ArgsUsage: "[type]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			types, err := parseTypes(cmd.Args().First())
			if err != nil {
				// An unknown type is reported without failing the command.
				fmt.Fprintln(a.stderr, ui.StatusError(err.Error()))
				return nil
			}
			lib, err := a.library()
			if err != nil {
				return err
			}

			title := cases.Title(language.English)
			for _, t := range types {
				assets, err := lib.List(t)
				if err != nil {
					return fmt.Errorf("error listing assets: %w", err)
				}
				fmt.Fprintf(a.stdout, "\n%s\n", ui.Bold("Available "+title.String(t.String())+":"))
				if len(assets) == 0 {
					fmt.Fprintln(a.stdout, ui.Dim("  (none installed)"))
					continue
				}
				rows := make([][]string, 0, len(assets))
				for _, asset := range assets {
					rows = append(rows, []string{asset.Name, asset.Description})
				}
				fmt.Fprintln(a.stdout, ui.Table([]string{"Name", "Description"}, rows))
			}
			return nil
		},
	}
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check installed assets for required metadata",
		ArgsUsage: "[type]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat warnings as failures",
			},
			&cli.BoolFlag{
				Name:  "skip-secrets",
				Usage: "Skip scanning asset content for credentials",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			types, err := parseTypes(cmd.Args().First())
			if err != nil {
				return err
			}
			lib, err := a.library()
			if err != nil {
				return err
			}

			opts := validation.Options{StrictMode: cmd.Bool("strict")}
			reports, listErr := validation.ValidateAll(lib, types)
			if !cmd.Bool("skip-secrets") {
				scanSecrets(reports)
			}
			for _, r := range reports {
				label := fmt.Sprintf("%s/%s", r.Asset.Type, r.Asset.Name)
				if r.Result.Passed(opts) {
					fmt.Fprintln(a.stdout, ui.StatusSuccess(label))
				} else {
					fmt.Fprintln(a.stdout, ui.StatusError(label))
				}
				for _, e := range r.Result.Errors {
					fmt.Fprintf(a.stdout, "    %s\n", e)
				}
				for _, w := range r.Result.Warnings {
					fmt.Fprintln(a.stdout, "    "+ui.StatusWarning(w))
				}
			}

			failed := validation.Failed(reports, opts)
			fmt.Fprintf(a.stdout, "\n%d assets checked, %d failed\n", len(reports), len(failed))
			if listErr != nil {
				return listErr
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d assets failed validation", len(failed), len(reports))
			}
			return nil
		},
	}
}

// scanSecrets adds credential findings to each report.
func scanSecrets(reports []validation.Report) {
	scanner := security.NewScanner(nil)
	for _, r := range reports {
		findings, err := scanner.ScanAsset(r.Asset)
		if err != nil {
			r.Result.AddError(&validation.Error{Field: "content", Message: "cannot scan for secrets", Err: err})
			continue
		}
		security.Record(r.Result, findings)
	}
}

func (a *app) downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Install an asset from the library into this project",
		ArgsUsage: "<type> <name>",
		Description: `Copy one asset to .github/<type>/ in the current directory.

   Examples:
     wsa download instructions go-style
     wsa download --output ./skills skills pdf`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Simulate the download without writing files",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite existing files",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write the asset into",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("invalid format. Use: download <type> <name>")
			}
			id, err := install.ParseID(cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}
			if id.Legacy {
				fmt.Fprintln(a.stdout, ui.StatusWarning(fmt.Sprintf("Deprecation Warning: The format '%s:%s' is deprecated.", id.Type, id.Name)))
				fmt.Fprintf(a.stdout, "   Please use: wsa download %s %s\n\n", id.Type, id.Name)
			}

			lib, err := a.library()
			if err != nil {
				return err
			}
			opts := install.Options{
				Output: cmd.String("output"),
				Force:  cmd.Bool("force"),
				DryRun: cmd.Bool("dry-run"),
			}
			res, err := install.Install(ctx, lib, id, opts)
			if err != nil {
				return err
			}

			if opts.DryRun {
				fmt.Fprintln(a.stdout, ui.Info("[Dry Run]")+" "+id.String())
				for _, w := range res.Writes {
					line := "Would write to " + w.Dest
					if w.Exists {
						line += " " + ui.Dim("(exists)")
					}
					fmt.Fprintln(a.stdout, "  "+line)
				}
				return nil
			}
			fmt.Fprintln(a.stdout, ui.StatusSuccess(fmt.Sprintf("Downloaded %s to %s", id, res.Dest)))
			return nil
		},
	}
}
