package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/vaultclip/internal"
	pkgconfig "github.com/starford/vaultclip/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func clip(ctx context.Context, cmd *cli.Command) error {
	in := internal.ClipOptions{
		URL:        cmd.String("url"),
		HTMLFile:   cmd.String("file"),
		TemplateID: cmd.String("template"),
		DryRun:     cmd.Bool("dry-run"),
	}
	if in.URL == "" && in.HTMLFile == "" {
		return errors.New("one of --url or --file is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunClip(ctx, in, internal.WithConfig(cfg))
}

func importTemplates(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return errors.New("at least one template file is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunImport(ctx, files, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "vaultclip",
		Usage:  "Clip web pages into Markdown notes using user-defined templates",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE", "CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and template watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve clipping and template tools over MCP stdio",
				Action: mcp,
			},
			{
				Name:      "clip",
				Usage:     "Clip one page into the vault, or print it with --dry-run",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Page URL to fetch"},
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read page HTML from a file instead of fetching"},
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template id (default template when empty)"},
					&cli.BoolFlag{Name: "dry-run", Usage: "Print the rendered note instead of writing it"},
				},
				Action: clip,
			},
			{
				Name:      "import",
				Usage:     "Import template JSON files into the template store",
				ArgsUsage: "FILE...",
				Action:    importTemplates,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
