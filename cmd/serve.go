package cmd

import (
	"context"
	"fmt"

	"github.com/Jungsungyoung/whisper-obsidian/internal/config"
	"github.com/Jungsungyoung/whisper-obsidian/internal/server"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the transcription service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Path to the Obsidian vault",
				Sources: cli.EnvVars("WO_VAULT_PATH"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if v := cmd.String("vault"); v != "" {
				cfg.Vault.Path = v
			}

			if cfg.Vault.Path == "" {
				return fmt.Errorf("vault path is required (set WO_VAULT_PATH env or vault.path in config)")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return server.Run(ctx, cfg)
		},
	}
}
