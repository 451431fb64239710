package transcribe

import (
	"context"
	"errors"
	"strings"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcript"
	"github.com/rs/zerolog/log"
)

// ProgressFunc receives percentage milestones and a human-readable detail
// while a backend works through an audio file.
type ProgressFunc func(pct int, detail string)

// SetupError marks failures that no fallback can repair, such as a model
// download cut off mid-way. Callers must surface these instead of retrying.
type SetupError struct {
	Msg string
}

func (e *SetupError) Error() string { return e.Msg }

// backend turns one audio file into a transcript.
type backend interface {
	Name() string
	Transcribe(ctx context.Context, audioPath, hint string, onProgress ProgressFunc) (*transcript.Result, error)
}

// Engine runs local transcription with a remote fallback. The local backend
// handles whisper plus diarization; the remote one is the degraded path with
// a single undifferentiated speaker.
type Engine struct {
	local       backend
	remote      backend
	domainVocab string
}

// Options configures engine construction.
type Options struct {
	Model       string
	Python      string
	HFToken     string
	DomainVocab string
	OpenAIKey   string
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		local:       newWhisperBackend(opts.Model, opts.Python, opts.HFToken),
		domainVocab: opts.DomainVocab,
	}
	if opts.OpenAIKey != "" {
		e.remote = newOpenAIBackend(opts.OpenAIKey)
	}
	return e
}

func newEngineWithBackends(local, remote backend, domainVocab string) *Engine {
	return &Engine{local: local, remote: remote, domainVocab: domainVocab}
}

// Transcribe runs the local backend and falls back to the remote one on
// ordinary failures. Setup errors propagate immediately: a fallback would
// mask a broken installation. Background is the recording's user-supplied
// context, folded into the recognition hint.
func (e *Engine) Transcribe(ctx context.Context, audioPath, background string, onProgress ProgressFunc) (*transcript.Result, error) {
	hint := buildHint(e.domainVocab, background)

	result, err := e.local.Transcribe(ctx, audioPath, hint, onProgress)
	if err == nil {
		return result, nil
	}

	var setupErr *SetupError
	if errors.As(err, &setupErr) {
		return nil, setupErr
	}
	if e.remote == nil {
		return nil, err
	}

	log.Warn().Err(err).Str("backend", e.local.Name()).Msg("local transcription failed, falling back")
	if onProgress != nil {
		onProgress(0, "로컬 전사 실패, OpenAI API로 전환")
	}
	return e.remote.Transcribe(ctx, audioPath, hint, onProgress)
}

// buildHint joins the configured domain vocabulary and the per-recording
// context into one recognition hint. Empty parts are dropped.
func buildHint(domainVocab, background string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{strings.TrimSpace(domainVocab), strings.TrimSpace(background)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}
