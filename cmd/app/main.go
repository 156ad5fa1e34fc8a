package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/algiz/internal"
	pkgconfig "github.com/starford/algiz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfPresent(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		// An explicitly named file must exist; the default path may be
		// absent, in which case the built-in defaults apply.
		if cmd.IsSet("config") {
			return nil, fmt.Errorf("config file %s not found", configPath)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runIndex(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunIndex(ctx, internal.WithConfig(cfg))
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	keyword := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("usage: algiz query <keyword>")
	}
	return internal.RunQuery(ctx, keyword, internal.WithConfig(cfg))
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunWatch(ctx, internal.WithConfig(cfg))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:  "algiz",
		Usage: "Privacy-partitioned knowledge index over plain-text notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("ALGIZ_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Scan the configured roots and rebuild both summary layers",
				Action: runIndex,
			},
			{
				Name:      "query",
				Usage:     "Search public-layer summaries by keyword",
				ArgsUsage: "<keyword>",
				Action:    runQuery,
			},
			{
				Name:   "serve",
				Usage:  "Start the REST service surface",
				Action: runServe,
			},
			{
				Name:   "watch",
				Usage:  "Watch relay files and the inbox for changes",
				Action: runWatch,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the public side of the index over MCP on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
