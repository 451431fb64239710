package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/pipeline"
)

var allowedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".mp4":  {},
	".webm": {},
	".ogg":  {},
	".md":   {},
}

// jobRunner lets tests stand in for the pipeline.
type jobRunner interface {
	Run(ctx context.Context, params pipeline.Job)
}

type uploadHandler struct {
	registry  *job.Registry
	runner    jobRunner
	uploadDir string
}

// Handle accepts a multipart audio or markdown upload, registers a job, and
// starts the pipeline on its own goroutine. Markdown files skip transcription;
// their text rides along as the job's source text. The response carries only
// the job id; all further interaction goes through /status.
func (h *uploadHandler) Handle(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("지원하지 않는 파일 형식: %s", ext))
	}

	jobID := uuid.NewString()
	savePath := filepath.Join(h.uploadDir, jobID+ext)
	if err := saveUpload(fileHeader, savePath); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	var sourceText string
	if ext == ".md" {
		sourceText, err = readMarkdownText(savePath)
		if err != nil {
			os.Remove(savePath)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(fileHeader.Filename), ext)
	}
	category := analyze.Normalize(c.FormValue("category"))

	h.registry.Create(jobID)
	go h.runner.Run(context.Background(), pipeline.Job{
		ID:               jobID,
		AudioPath:        savePath,
		Title:            title,
		Project:          strings.TrimSpace(c.FormValue("project")),
		OriginalFilename: fileHeader.Filename,
		Context:          strings.TrimSpace(c.FormValue("context")),
		Category:         category,
		SourceText:       sourceText,
	})

	log.Info().Str("job_id", jobID).Str("category", string(category)).Str("file", fileHeader.Filename).Msg("upload accepted")
	return c.JSON(http.StatusOK, map[string]string{"job_id": jobID})
}

// readMarkdownText loads a markdown upload as UTF-8 text, tolerating a BOM.
// Whitespace-only files are rejected.
func readMarkdownText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(strings.TrimPrefix(string(raw), "\ufeff"))
	if text == "" {
		return "", errors.New("MD 파일이 비어있습니다")
	}
	return text, nil
}

func saveUpload(fileHeader *multipart.FileHeader, path string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
