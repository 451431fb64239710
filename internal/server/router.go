package server

import (
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/project"
	"github.com/Jungsungyoung/whisper-obsidian/internal/settings"
)

type RouterConfig struct {
	Registry  *job.Registry
	Runner    jobRunner
	Scanner   *project.Scanner
	Store     *settings.Store
	UploadDir string
	MaxBytes  int64
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Multipart upload stays on plain echo; huma handles the JSON API.
	uploads := &uploadHandler{
		registry:  cfg.Registry,
		runner:    cfg.Runner,
		uploadDir: cfg.UploadDir,
	}
	uploadGroup := e.Group("/upload")
	if cfg.MaxBytes > 0 {
		uploadGroup.Use(echomw.BodyLimit(fmt.Sprintf("%dM", cfg.MaxBytes>>20)))
	}
	uploadGroup.POST("", uploads.Handle)

	humaConfig := huma.DefaultConfig("Whisper Obsidian API", "1.0.0")
	humaConfig.Info.Description = "Audio to Obsidian note pipeline"
	api := humaecho.New(e, humaConfig)

	jobs := &jobsHandler{registry: cfg.Registry}
	huma.Register(api, huma.Operation{
		OperationID: "get-job-status",
		Method:      http.MethodGet,
		Path:        "/status/{job_id}",
		Summary:     "Get job status snapshot",
		Tags:        []string{"Jobs"},
	}, jobs.Status)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-job",
		Method:      http.MethodPost,
		Path:        "/cancel/{job_id}",
		Summary:     "Request job cancellation",
		Tags:        []string{"Jobs"},
	}, jobs.Cancel)

	huma.Register(api, huma.Operation{
		OperationID: "confirm-job",
		Method:      http.MethodPost,
		Path:        "/confirm/{job_id}",
		Summary:     "Confirm a reviewed job with optional edits",
		Tags:        []string{"Jobs"},
	}, jobs.Confirm)

	projects := &projectsHandler{scanner: cfg.Scanner}
	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List active vault projects",
		Tags:        []string{"Vault"},
	}, projects.List)

	settingsH := &settingsHandler{store: cfg.Store}
	huma.Register(api, huma.Operation{
		OperationID: "get-settings",
		Method:      http.MethodGet,
		Path:        "/settings",
		Summary:     "Read settings with secrets masked",
		Tags:        []string{"Settings"},
	}, settingsH.Get)

	huma.Register(api, huma.Operation{
		OperationID: "save-settings",
		Method:      http.MethodPost,
		Path:        "/settings",
		Summary:     "Update settings",
		Tags:        []string{"Settings"},
	}, settingsH.Save)
}
