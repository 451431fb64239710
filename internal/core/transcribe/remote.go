package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcript"
)

const openAIAudioURL = "https://api.openai.com/v1/audio/transcriptions"

// fallbackSpeaker labels every remote segment; the API does no diarization.
const fallbackSpeaker = "Speaker A"

// openAIBackend transcribes through the hosted whisper-1 model. Segments come
// back with timings but without speakers.
type openAIBackend struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIBackend(apiKey string) *openAIBackend {
	return &openAIBackend{
		apiKey:  apiKey,
		baseURL: openAIAudioURL,
		client:  &http.Client{Timeout: 30 * time.Minute},
	}
}

func (o *openAIBackend) Name() string { return "openai" }

type openAITranscription struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (o *openAIBackend) Transcribe(ctx context.Context, audioPath, hint string, onProgress ProgressFunc) (*transcript.Result, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":           "whisper-1",
		"response_format": "verbose_json",
		"language":        "ko",
	}
	if hint != "" {
		fields["prompt"] = hint
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai transcription: http %d: %s", resp.StatusCode, b)
	}

	var parsed openAITranscription
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		segments = append(segments, transcript.Segment{
			Timestamp: transcript.FormatDuration(seg.Start),
			Speaker:   fallbackSpeaker,
			Text:      strings.TrimSpace(seg.Text),
		})
	}

	return &transcript.Result{
		Segments: segments,
		FullText: parsed.Text,
		Duration: transcript.FormatDuration(parsed.Duration),
		Method:   transcript.MethodAPI,
	}, nil
}
