package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Jungsungyoung/whisper-obsidian/internal/config"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/pipeline"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/project"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcribe"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/vault"
	"github.com/Jungsungyoung/whisper-obsidian/internal/settings"
)

// settingsFile is the runtime-editable env file behind the settings panel.
const settingsFile = ".env"

// Run wires the pipeline components together and serves HTTP until SIGINT or
// SIGTERM.
func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Debug().Str("level", cfg.Logging.Level).Msg("log level configured")

	registry := job.NewRegistry()
	engine := transcribe.NewEngine(transcribe.Options{
		Model:       cfg.Whisper.Model,
		Python:      cfg.Whisper.Python,
		HFToken:     cfg.Whisper.HFToken,
		DomainVocab: cfg.Whisper.DomainVocab,
		OpenAIKey:   cfg.LLM.OpenAIAPIKey,
	})
	analyzer := analyze.NewAnalyzer(cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel, cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel)
	writer := vault.NewWriter(cfg.Vault.Path, cfg.Vault.Name, vault.Folders{
		Meetings:  cfg.Vault.MeetingsFolder,
		Inbox:     cfg.Vault.InboxFolder,
		Daily:     cfg.Vault.DailyFolder,
		Areas:     cfg.Vault.AreasFolder,
		Projects:  cfg.Vault.ProjectsFolder,
		Resources: cfg.Vault.ResourcesFolder,
	})

	pollInterval, err := time.ParseDuration(cfg.Review.PollInterval)
	if err != nil {
		pollInterval = 500 * time.Millisecond
	}
	runner := pipeline.NewRunner(registry, engine, analyzer, writer, pollInterval)

	e := echo.New()
	e.HideBanner = true

	SetupRouter(e, RouterConfig{
		Registry:  registry,
		Runner:    runner,
		Scanner:   project.NewScanner(cfg.Vault.Path, cfg.Vault.ProjectsFolder),
		Store:     settings.NewStore(settingsFile),
		UploadDir: cfg.Upload.Dir,
		MaxBytes:  cfg.Upload.MaxBytes,
	})

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()
	log.Info().Str("vault", cfg.Vault.Path).Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}
