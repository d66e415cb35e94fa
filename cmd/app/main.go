package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/codesync/internal"
	"github.com/starford/codesync/internal/apperr"
	"github.com/starford/codesync/internal/scan"
	"github.com/starford/codesync/internal/storage"
	"github.com/starford/codesync/internal/template"
	"github.com/starford/codesync/internal/version"
	pkgconfig "github.com/starford/codesync/pkg/config"
)

func rootFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Usage:   "Workspace root directory",
		Value:   ".",
		Sources: cli.EnvVars("CODESYNC_ROOT"),
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	root := cmd.String("root")

	cfg := internal.NewDefaultConfig()
	cfg.Watch.Root = root

	// The optional per-workspace config lives inside the marker directory.
	for _, m := range scan.MarkerDirs {
		path := filepath.Join(root, m, internal.ConfigFileName)
		loaded, err := pkgconfig.LoadIfExists(path, cfg)
		if err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
		if loaded {
			break
		}
	}
	if cmd.Bool("log") {
		cfg.Watch.LogToFile = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}

func runScan(_ context.Context, cmd *cli.Command) error {
	root := cmd.String("root")

	mode, err := scan.WorkspaceMode(root)
	if err != nil {
		return err
	}
	fmt.Printf("workspace mode: %s\n", mode)

	if info, ok := scan.DetectMonorepo(root); ok {
		fmt.Printf("monorepo tool:  %s (%s)\n", scan.ToolName(info.Tool), info.ConfigFile)
		for _, p := range info.Patterns {
			fmt.Printf("  packages: %s\n", p)
		}
	}

	repos, err := scan.Repositories(root)
	if err != nil {
		return err
	}
	for _, r := range repos {
		status := "not set up"
		if r.HasSetup {
			status = "set up"
		}
		line := fmt.Sprintf("  %-24s %s", r.Name, status)
		if r.Module != "" {
			line += fmt.Sprintf("  (go module %s)", r.Module)
		}
		fmt.Println(line)
	}
	if len(repos) == 0 {
		fmt.Println("no repositories found")
	}
	return nil
}

func runUpdate(_ context.Context, cmd *cli.Command) error {
	root := cmd.String("root")
	dryRun := cmd.Bool("dry-run")

	store, err := storage.NewFS(root)
	if err != nil {
		return err
	}

	markerDir := ""
	for _, m := range scan.MarkerDirs {
		if store.Exists(m) {
			markerDir = m
			break
		}
	}
	if markerDir == "" {
		return fmt.Errorf("update: %w in %s (run `codesync init` first)", apperr.ErrMissingSetup, root)
	}

	outdated := template.Outdated(store, markerDir)
	if len(outdated) == 0 {
		fmt.Printf("all managed files are at version %s\n", version.Current)
		return nil
	}

	vars := map[string]string{
		"PROJECT_NAME": filepath.Base(store.Root()),
	}
	results := template.UpgradeAll(store, outdated, vars, dryRun)

	failed := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			fmt.Printf("  %s: %v\n", res.Path, res.Err)
		case dryRun:
			fmt.Printf("  %s: would upgrade (merge=%v)\n", res.Path, res.Merged)
		default:
			fmt.Printf("  %s: upgraded (backup %s)\n", res.Path, res.BackupPath)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to upgrade", failed)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "codesync",
		Usage:   "Project scaffolding with tag-synced decision logs",
		Version: version.Current,
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "Watch source files and sync inline tags to DECISIONS.md",
				Action: runWatch,
				Flags: []cli.Flag{
					rootFlag(),
					&cli.BoolFlag{
						Name:  "log",
						Usage: "Also write session events to a rotating watch log",
					},
				},
			},
			{
				Name:   "scan",
				Usage:  "Detect workspace layout and repository setup state",
				Action: runScan,
				Flags:  []cli.Flag{rootFlag()},
			},
			{
				Name:   "update",
				Usage:  "Upgrade managed markdown files to the current release",
				Action: runUpdate,
				Flags: []cli.Flag{
					rootFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Show what would be upgraded without writing",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
