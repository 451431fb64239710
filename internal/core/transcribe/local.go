package transcribe

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcript"
	"github.com/rs/zerolog/log"
)

//go:embed assets/whisperx_helper.py
var helperScript []byte

// helperEvent is one JSON line on the helper's stdout.
type helperEvent struct {
	Event    string          `json:"event"`
	Pct      int             `json:"pct"`
	Msg      string          `json:"msg"`
	Kind     string          `json:"kind"`
	Segments []helperSegment `json:"segments"`
	Duration float64         `json:"duration"`
}

type helperSegment struct {
	Start   float64 `json:"start"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// lineRunner abstracts streaming process execution for testability.
type lineRunner interface {
	Run(ctx context.Context, name string, args []string, onLine func(line string)) (stderr string, err error)
}

// execLineRunner runs a command and feeds stdout to onLine per line.
type execLineRunner struct{}

func (execLineRunner) Run(ctx context.Context, name string, args []string, onLine func(line string)) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", err
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		onLine(scanner.Text())
	}

	waitErr := cmd.Wait()
	if err := scanner.Err(); err != nil && waitErr == nil {
		waitErr = err
	}
	return stderr.String(), waitErr
}

// whisperBackend runs the embedded whisperx helper under python.
type whisperBackend struct {
	model   string
	python  string
	hfToken string
	runner  lineRunner
}

func newWhisperBackend(model, python, hfToken string) *whisperBackend {
	if python == "" {
		python = "python3"
	}
	return &whisperBackend{model: model, python: python, hfToken: hfToken, runner: execLineRunner{}}
}

func (w *whisperBackend) Name() string { return "whisperx" }

func (w *whisperBackend) Transcribe(ctx context.Context, audioPath, hint string, onProgress ProgressFunc) (*transcript.Result, error) {
	scriptPath := filepath.Join(os.TempDir(), "whisper-obsidian-helper.py")
	if err := os.WriteFile(scriptPath, helperScript, 0o755); err != nil {
		return nil, fmt.Errorf("write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	args := []string{scriptPath, "--audio", audioPath, "--model", w.model}
	if w.hfToken != "" {
		args = append(args, "--hf-token", w.hfToken)
	}
	if hint != "" {
		args = append(args, "--initial-prompt", hint)
	}

	var result *helperEvent
	var helperErr *helperEvent
	onLine := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		var ev helperEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			log.Debug().Str("line", line).Msg("unparseable helper output")
			return
		}
		switch ev.Event {
		case "progress":
			if onProgress != nil {
				onProgress(ev.Pct, ev.Msg)
			}
		case "error":
			helperErr = &ev
		case "result":
			result = &ev
		}
	}

	stderr, runErr := w.runner.Run(ctx, w.python, args, onLine)

	if helperErr != nil {
		if helperErr.Kind == "setup" {
			return nil, &SetupError{Msg: helperErr.Msg}
		}
		return nil, fmt.Errorf("whisperx helper: %s", helperErr.Msg)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("whisperx helper failed: %s", msg)
	}
	if result == nil {
		return nil, fmt.Errorf("whisperx helper produced no result")
	}

	return convertSegments(result)
}

// convertSegments relabels raw diarization speakers in order of first
// appearance and formats timestamps.
func convertSegments(ev *helperEvent) (*transcript.Result, error) {
	labeler := transcript.NewLabeler()
	segments := make([]transcript.Segment, 0, len(ev.Segments))
	for _, seg := range ev.Segments {
		raw := seg.Speaker
		if raw == "" {
			raw = transcript.DefaultSpeaker
		}
		label, err := labeler.Label(raw)
		if err != nil {
			return nil, err
		}
		segments = append(segments, transcript.Segment{
			Timestamp: transcript.FormatDuration(seg.Start),
			Speaker:   label,
			Text:      strings.TrimSpace(seg.Text),
		})
	}

	return &transcript.Result{
		Segments: segments,
		FullText: transcript.JoinText(segments),
		Duration: transcript.FormatDuration(ev.Duration),
		Method:   transcript.MethodLocal,
	}, nil
}
