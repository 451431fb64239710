package job

import (
	"fmt"
	"time"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/vault"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued       Status = "queued"
	StatusTranscribing Status = "transcribing"
	StatusAnalyzing    Status = "analyzing"
	StatusReview       Status = "review"
	StatusConfirmed    Status = "confirmed"
	StatusCancelling   Status = "cancelling"
	StatusBuilding     Status = "building"
	StatusSaving       Status = "saving"
	StatusDone         Status = "done"
	StatusError        Status = "error"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether a status permits no further mutation.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusCancelled
}

// ReviewEdit is the reviewer's confirmation payload: a wholesale analysis
// replacement (field name to string or string list) plus an optional
// speaker-name mapping.
type ReviewEdit struct {
	Analysis   map[string]any    `json:"analysis"`
	SpeakerMap map[string]string `json:"speaker_map"`
}

// Record is one job's full state. The worker goroutine owns it for the job's
// lifetime; external writers are limited to cancellation requests and review
// confirmation, both going through the registry.
type Record struct {
	ID       string            `json:"id"`
	Status   Status            `json:"status"`
	Step     string            `json:"step"`
	Progress int               `json:"progress"`
	Detail   string            `json:"detail"`
	Elapsed  int               `json:"elapsed"`
	Logs     []string          `json:"logs"`
	Result   *vault.SaveResult `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`

	// Populated mid-flight for the review panel.
	Category analyze.Category  `json:"category,omitempty"`
	Analysis *analyze.Analysis `json:"analysis,omitempty"`
	Speakers []string          `json:"speakers,omitempty"`
	Edited   *ReviewEdit       `json:"analysis_edited,omitempty"`

	StartedAt  time.Time `json:"-"`
	reviewWake chan struct{}
}

// AppendLog appends a log line stamped with elapsed time from job start.
func (r *Record) AppendLog(detail string) {
	elapsed := int(time.Since(r.StartedAt).Seconds())
	r.Logs = append(r.Logs, fmt.Sprintf("[%02d:%02d] %s", elapsed/60, elapsed%60, detail))
}
