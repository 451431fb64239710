package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/job"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/pipeline"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/project"
	"github.com/Jungsungyoung/whisper-obsidian/internal/settings"
)

// recordingRunner captures the pipeline job instead of running it.
type recordingRunner struct {
	mu   sync.Mutex
	jobs []pipeline.Job
	done chan struct{}
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{done: make(chan struct{}, 8)}
}

func (r *recordingRunner) Run(_ context.Context, params pipeline.Job) {
	r.mu.Lock()
	r.jobs = append(r.jobs, params)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recordingRunner) last(t *testing.T) pipeline.Job {
	t.Helper()
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[len(r.jobs)-1]
}

type testServer struct {
	echo     *echo.Echo
	registry *job.Registry
	runner   *recordingRunner
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	registry := job.NewRegistry()
	runner := newRecordingRunner()
	uploadDir := t.TempDir()

	e := echo.New()
	SetupRouter(e, RouterConfig{
		Registry:  registry,
		Runner:    runner,
		Scanner:   project.NewScanner(t.TempDir(), "20_Projects"),
		Store:     settings.NewStore(filepath.Join(t.TempDir(), ".env")),
		UploadDir: uploadDir,
		MaxBytes:  32 << 20,
	})
	return &testServer{echo: e, registry: registry, runner: runner}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func multipartUpload(t *testing.T, filename string, fields map[string]string) *http.Request {
	return multipartUploadContent(t, filename, []byte("fake audio"), fields)
}

func multipartUploadContent(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadCreatesJob(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(multipartUpload(t, "주간 회의.m4a", map[string]string{
		"project":  "[[2026_플랫폼_Dashboard]]",
		"context":  "스프린트 회의",
		"category": "meeting",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	jobID := resp["job_id"]
	if jobID == "" {
		t.Fatal("missing job_id")
	}

	if _, ok := s.registry.Get(jobID); !ok {
		t.Fatal("job not registered")
	}

	params := s.runner.last(t)
	if params.ID != jobID {
		t.Fatalf("runner job id = %s", params.ID)
	}
	// No title form field: the file stem becomes the title.
	if params.Title != "주간 회의" {
		t.Fatalf("title = %q", params.Title)
	}
	if params.Category != analyze.CategoryMeeting {
		t.Fatalf("category = %s", params.Category)
	}
	if !strings.HasSuffix(params.AudioPath, jobID+".m4a") {
		t.Fatalf("audio path = %s", params.AudioPath)
	}
	if _, err := os.Stat(params.AudioPath); err != nil {
		t.Fatalf("uploaded file not saved: %v", err)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(multipartUpload(t, "notes.txt", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(s.runner.jobs) != 0 {
		t.Fatal("job started for rejected upload")
	}
}

// TestUploadMarkdownCarriesSourceText verifies an .md upload is accepted and
// its text, stripped of a UTF-8 BOM, becomes the job's source text.
func TestUploadMarkdownCarriesSourceText(t *testing.T) {
	s := newTestServer(t)

	content := append([]byte("\ufeff"), []byte("# 논문 제목\n\n본문 내용입니다.")...)
	rec := s.do(multipartUploadContent(t, "ai_paper.md", content, map[string]string{
		"category": "reference",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	params := s.runner.last(t)
	if params.Category != analyze.CategoryReference {
		t.Fatalf("category = %s", params.Category)
	}
	if strings.HasPrefix(params.SourceText, "\ufeff") {
		t.Fatal("BOM survived markdown read")
	}
	if !strings.Contains(params.SourceText, "# 논문 제목") {
		t.Fatalf("source text = %q", params.SourceText)
	}
}

func TestUploadEmptyMarkdownRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(multipartUploadContent(t, "empty.md", []byte("   \n\n  "), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "비어있습니다") {
		t.Fatalf("body = %s", rec.Body)
	}
	if len(s.runner.jobs) != 0 {
		t.Fatal("job started for empty markdown upload")
	}
}

// TestUploadUnknownCategoryFallsBack verifies an unrecognized category tag is
// treated as a meeting everywhere downstream.
func TestUploadUnknownCategoryFallsBack(t *testing.T) {
	s := newTestServer(t)

	s.do(multipartUpload(t, "rec.mp3", map[string]string{"category": "brainstorm"}))
	if params := s.runner.last(t); params.Category != analyze.CategoryMeeting {
		t.Fatalf("category = %s", params.Category)
	}
}

func TestUploadExplicitTitleWins(t *testing.T) {
	s := newTestServer(t)

	s.do(multipartUpload(t, "rec001.mp3", map[string]string{"title": "분기 계획"}))
	if params := s.runner.last(t); params.Title != "분기 계획" {
		t.Fatalf("title = %q", params.Title)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.registry.Create("j1")
	s.registry.Update("j1", func(rec *job.Record) {
		rec.Status = job.StatusTranscribing
		rec.Progress = 40
		rec.AppendLog("전사 완료, 단어 정렬 중...")
	})

	rec := s.do(httptest.NewRequest(http.MethodGet, "/status/j1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var body struct {
		Status   string   `json:"status"`
		Progress int      `json:"progress"`
		Logs     []string `json:"logs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "transcribing" || body.Progress != 40 {
		t.Fatalf("body = %+v", body)
	}
	if len(body.Logs) != 1 || !strings.Contains(body.Logs[0], "전사 완료") {
		t.Fatalf("logs = %v", body.Logs)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(httptest.NewRequest(http.MethodGet, "/status/nope", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.registry.Create("j1")

	req := httptest.NewRequest(http.MethodPost, "/cancel/j1", nil)
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !s.registry.IsCancelling("j1") {
		t.Fatal("job not cancelling")
	}
}

func TestConfirmEndpointLegacyFold(t *testing.T) {
	s := newTestServer(t)
	s.registry.Create("j1")
	s.registry.Update("j1", func(rec *job.Record) { rec.Status = job.StatusReview })

	payload := `{"purpose": "수정된 목적", "decisions": ["금요일 배포"], "speaker_map": {"Speaker A": "김민준"}}`
	req := httptest.NewRequest(http.MethodPost, "/confirm/j1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	got, _ := s.registry.Get("j1")
	if got.Status != job.StatusConfirmed {
		t.Fatalf("status = %s", got.Status)
	}
	if got.Edited.Analysis["purpose"] != "수정된 목적" {
		t.Fatalf("analysis = %v, legacy fields not folded", got.Edited.Analysis)
	}
	if got.Edited.SpeakerMap["Speaker A"] != "김민준" {
		t.Fatalf("speaker map = %v", got.Edited.SpeakerMap)
	}
}

// TestStatusExposesReviewEdits verifies a confirmed job's status payload
// carries the reviewer's edits under analysis_edited.
func TestStatusExposesReviewEdits(t *testing.T) {
	s := newTestServer(t)
	s.registry.Create("j1")
	s.registry.Update("j1", func(rec *job.Record) { rec.Status = job.StatusReview })

	req := httptest.NewRequest(http.MethodPost, "/confirm/j1", strings.NewReader(`{"analysis": {"purpose": "수정된 목적"}}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/status/j1", nil))
	var body struct {
		Edited *job.ReviewEdit `json:"analysis_edited"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Edited == nil || body.Edited.Analysis["purpose"] != "수정된 목적" {
		t.Fatalf("analysis_edited = %+v", body.Edited)
	}
}

func TestConfirmOutsideReviewRejected(t *testing.T) {
	s := newTestServer(t)
	s.registry.Create("j1")

	req := httptest.NewRequest(http.MethodPost, "/confirm/j1", strings.NewReader(`{"analysis": {"purpose": "x"}}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	if rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t)

	payload := `{"WHISPER_MODEL": "small", "GEMINI_API_KEY": "sk-secret"}`
	req := httptest.NewRequest(http.MethodPost, "/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if rec := s.do(req); rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body)
	}

	rec := s.do(httptest.NewRequest(http.MethodGet, "/settings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["WHISPER_MODEL"] != "small" {
		t.Fatalf("model = %q", got["WHISPER_MODEL"])
	}
	if got["GEMINI_API_KEY"] != settings.Mask {
		t.Fatalf("gemini key = %q, want mask", got["GEMINI_API_KEY"])
	}
}

func TestProjectsEndpointEmptyVault(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(httptest.NewRequest(http.MethodGet, "/projects", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("body = %s", body)
	}
}
