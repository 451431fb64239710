package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/note"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcribe"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcript"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/vault"
	"github.com/rs/zerolog/log"
)

// Transcriber produces a transcript for an uploaded audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, background string, onProgress transcribe.ProgressFunc) (*transcript.Result, error)
}

// Analyzer extracts structured fields from transcript text.
type Analyzer interface {
	Analyze(ctx context.Context, req analyze.Request) (*analyze.Analysis, error)
}

// NoteWriter persists rendered notes.
type NoteWriter interface {
	Save(data note.Data, mainBody, secondaryBody string) (*vault.SaveResult, error)
}

// Job carries the upload parameters for one pipeline run. SourceText is set
// for markdown imports, which skip transcription and analyze the text as-is.
type Job struct {
	ID               string
	AudioPath        string
	Title            string
	Project          string
	OriginalFilename string
	Context          string
	Category         analyze.Category
	SourceText       string
}

// Runner drives one job through transcription, analysis, review, note
// building, and vault storage.
type Runner struct {
	registry     *job.Registry
	engine       Transcriber
	analyzer     Analyzer
	writer       NoteWriter
	pollInterval time.Duration
}

func NewRunner(registry *job.Registry, engine Transcriber, analyzer Analyzer, writer NoteWriter, pollInterval time.Duration) *Runner {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Runner{
		registry:     registry,
		engine:       engine,
		analyzer:     analyzer,
		writer:       writer,
		pollInterval: pollInterval,
	}
}

// Run executes the full pipeline for one job. It is meant to be called on its
// own goroutine; all outcomes, including panics in dependencies surfacing as
// errors, land in the job record. The uploaded audio file is removed on every
// exit path.
func (r *Runner) Run(ctx context.Context, params Job) {
	defer func() {
		if err := os.Remove(params.AudioPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", params.AudioPath).Msg("uploaded file cleanup failed")
		}
	}()
	defer func() {
		if v := recover(); v != nil {
			log.Error().Str("job_id", params.ID).Interface("panic", v).Msg("job panicked")
			r.fail(params.ID, fmt.Errorf("internal error: %v", v))
		}
	}()

	var result *transcript.Result
	if params.SourceText != "" {
		// Markdown import: the uploaded text is the transcript.
		result = &transcript.Result{
			Segments: []transcript.Segment{},
			FullText: params.SourceText,
			Duration: "0:00",
			Method:   transcript.MethodText,
		}
	} else {
		r.update(params.ID, job.StatusTranscribing, "전사 중...", 0, "모델 준비 중...")

		var err error
		result, err = r.engine.Transcribe(ctx, params.AudioPath, params.Context, func(pct int, detail string) {
			r.mirrorProgress(params.ID, pct, detail)
		})
		if err != nil {
			r.fail(params.ID, err)
			return
		}
	}

	if r.registry.IsCancelling(params.ID) {
		r.markCancelled(params.ID)
		return
	}

	r.update(params.ID, job.StatusAnalyzing, "AI 분석 중...", 96, "Gemini 분석 중...")
	analysis, err := r.analyzer.Analyze(ctx, analyze.Request{
		TranscriptText: result.FullText,
		Category:       params.Category,
		Context:        params.Context,
	})
	if err != nil {
		r.fail(params.ID, err)
		return
	}

	if r.registry.IsCancelling(params.ID) {
		r.markCancelled(params.ID)
		return
	}

	// Park for review. Speakers are precomputed for the review panel.
	reviewErr := r.registry.Update(params.ID, func(rec *job.Record) {
		rec.Status = job.StatusReview
		rec.Step = "검토 중..."
		rec.Progress = 97
		rec.Detail = "분석 결과를 확인하고 저장 버튼을 클릭하세요."
		rec.Analysis = analysis
		rec.Category = params.Category
		rec.Speakers = transcript.Speakers(result.Segments)
		rec.AppendLog("AI 분석 완료. 결과를 확인하고 저장 버튼을 클릭하세요.")
	})
	if reviewErr != nil {
		r.markCancelled(params.ID)
		return
	}

	edit, ok := r.awaitReview(ctx, params.ID)
	if !ok {
		r.markCancelled(params.ID)
		return
	}
	if edit != nil && len(edit.Analysis) > 0 {
		analysis = analyze.FromFields(params.Category, edit.Analysis)
	}
	if edit != nil {
		transcript.ApplySpeakerMap(result.Segments, edit.SpeakerMap)
	}

	r.update(params.ID, job.StatusBuilding, "노트 생성 중...", 98, "노트 빌드 중...")
	data := note.Data{
		Date:          time.Now(),
		Title:         params.Title,
		AudioFilename: params.OriginalFilename,
		Duration:      result.Duration,
		Speakers:      transcript.Speakers(result.Segments),
		Analysis:      analysis,
		Transcript:    result.Segments,
		Project:       params.Project,
		Category:      params.Category,
		SourceText:    params.SourceText,
	}
	mainBody, secondaryBody := note.Build(data)

	r.update(params.ID, job.StatusSaving, "Vault에 저장 중...", 99, "파일 저장 중...")
	saved, err := r.writer.Save(data, mainBody, secondaryBody)
	if err != nil {
		r.fail(params.ID, err)
		return
	}

	r.registry.Update(params.ID, func(rec *job.Record) {
		elapsed := int(time.Since(rec.StartedAt).Seconds())
		doneMsg := fmt.Sprintf("완료 — 총 %d초 소요", elapsed)
		rec.Status = job.StatusDone
		rec.Step = "완료"
		rec.Progress = 100
		rec.Detail = doneMsg
		rec.Result = saved
		rec.AppendLog(doneMsg)
	})
	log.Info().Str("job_id", params.ID).Str("category", string(params.Category)).Msg("job finished")
}

// awaitReview blocks until the reviewer confirms or cancels. The wake channel
// delivers the transition promptly; the ticker bounds latency if a signal is
// ever missed. Context cancellation counts as a cancel.
func (r *Runner) awaitReview(ctx context.Context, id string) (*job.ReviewEdit, bool) {
	wake := r.registry.ReviewWake(id)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		rec, ok := r.registry.Get(id)
		if !ok {
			return nil, false
		}
		switch rec.Status {
		case job.StatusConfirmed:
			return rec.Edited, true
		case job.StatusCancelling:
			return nil, false
		}

		select {
		case <-wake:
		case <-ticker.C:
		case <-ctx.Done():
			return nil, false
		}
	}
}

func (r *Runner) update(id string, status job.Status, step string, progress int, detail string) {
	r.registry.Update(id, func(rec *job.Record) {
		rec.Status = status
		rec.Step = step
		rec.Progress = progress
		rec.Detail = detail
		if detail != "" {
			rec.AppendLog(detail)
		}
	})
}

// mirrorProgress copies a transcription milestone into the record without
// touching status, so a concurrent cancel request is not overwritten.
func (r *Runner) mirrorProgress(id string, pct int, detail string) {
	r.registry.Update(id, func(rec *job.Record) {
		rec.Progress = pct
		rec.Detail = detail
		if detail != "" {
			rec.AppendLog(detail)
		}
	})
}

func (r *Runner) markCancelled(id string) {
	r.registry.Update(id, func(rec *job.Record) {
		rec.AppendLog("사용자에 의해 취소됨")
		rec.Status = job.StatusCancelled
		rec.Step = "취소됨"
		rec.Progress = 0
		rec.Detail = "취소됨"
	})
	log.Info().Str("job_id", id).Msg("job cancelled")
}

func (r *Runner) fail(id string, err error) {
	r.registry.Update(id, func(rec *job.Record) {
		rec.AppendLog("오류: " + err.Error())
		rec.Status = job.StatusError
		rec.Step = "오류"
		rec.Progress = 0
		rec.Detail = err.Error()
		rec.Error = err.Error()
	})
	log.Error().Err(err).Str("job_id", id).Msg("job failed")
}
