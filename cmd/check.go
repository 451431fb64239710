package cmd

import (
	"context"
	"fmt"

	"github.com/Jungsungyoung/whisper-obsidian/internal/config"
	"github.com/Jungsungyoung/whisper-obsidian/internal/diagnostics"
	"github.com/urfave/cli/v3"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify external tools, paths, and API keys",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			report := diagnostics.NewChecker().Run(ctx, cfg)
			for _, item := range report.Items {
				fmt.Printf("%-6s %-18s %s\n", marker(item.Status), item.Name, item.Message)
				if item.Hint != "" {
					fmt.Printf("       %-18s %s\n", "", item.Hint)
				}
			}

			if report.HasFailures {
				return fmt.Errorf("some checks failed")
			}
			fmt.Println("\nAll required checks passed.")
			return nil
		},
	}
}

func marker(s diagnostics.Status) string {
	switch s {
	case diagnostics.StatusPass:
		return "[ok]"
	case diagnostics.StatusWarn:
		return "[warn]"
	default:
		return "[fail]"
	}
}
