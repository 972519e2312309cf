package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/hugin/internal"
	pkgconfig "github.com/starford/hugin/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	// The config file is optional unless explicitly requested.
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil || cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Flags and HUGIN_* env vars override file values.
	if v := cmd.String("vault"); v != "" {
		cfg.Vault.Path = v
	}
	if v := cmd.Int("port"); v != 0 {
		cfg.App.HTTP.Port = v
	}
	if v := cmd.String("store-driver"); v != "" {
		cfg.Store.Driver = v
	}
	if v := cmd.String("store-path"); v != "" {
		cfg.Store.Path = v
	}
	if v := cmd.String("log-level"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", v, err)
		}
		cfg.App.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if cmd.Bool("mcp") {
		if err := internal.RunMCP(ctx, opts...); err != nil {
			return fmt.Errorf("mcp run error: %w", err)
		}
		return nil
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "hugin",
		Usage:  "Local-first knowledge graph server: projects a Markdown vault into a queryable cognitive graph",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("HUGIN_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Path to the vault directory to open at startup",
				Sources: cli.EnvVars("HUGIN_VAULT"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP listen port",
				Sources: cli.EnvVars("HUGIN_PORT"),
			},
			&cli.StringFlag{
				Name:    "store-driver",
				Usage:   "Graph store backend: sqlite or badger",
				Sources: cli.EnvVars("HUGIN_STORE_DRIVER"),
			},
			&cli.StringFlag{
				Name:    "store-path",
				Usage:   "Graph store directory (default <vault>/.hugin)",
				Sources: cli.EnvVars("HUGIN_STORE_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				Sources: cli.EnvVars("HUGIN_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "mcp",
				Usage:   "Serve the Model Context Protocol on stdio instead of HTTP",
				Sources: cli.EnvVars("HUGIN_MCP"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
