package analyze

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// Request carries one analysis call through the provider chain.
type Request struct {
	TranscriptText string
	Category       Category
	Context        string
}

// Provider produces an analysis record from a transcript. Providers are
// tried in chain order; returning an error hands the request to the next
// provider.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, req Request) (*Analysis, error)
}

// Analyzer runs an ordered provider chain. The final provider is expected to
// never fail, so a fully exhausted chain is a programming error.
type Analyzer struct {
	providers []Provider
}

// NewAnalyzer builds the default chain: Gemini, then OpenAI, then the
// heuristic extractor. Providers without an API key are left out.
func NewAnalyzer(geminiKey, geminiModel, openAIKey, openAIModel string) *Analyzer {
	var providers []Provider
	if geminiKey != "" {
		providers = append(providers, &GeminiProvider{APIKey: geminiKey, Model: geminiModel})
	}
	if openAIKey != "" {
		providers = append(providers, &OpenAIProvider{APIKey: openAIKey, Model: openAIModel})
	}
	providers = append(providers, HeuristicProvider{})
	return &Analyzer{providers: providers}
}

// NewAnalyzerWithProviders builds a chain from explicit providers.
func NewAnalyzerWithProviders(providers ...Provider) *Analyzer {
	return &Analyzer{providers: providers}
}

// Analyze tries each provider in order, logging and continuing on failure.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	req.Category = Normalize(string(req.Category))

	for i, p := range a.providers {
		result, err := p.Analyze(ctx, req)
		if err == nil {
			return result, nil
		}
		if i == len(a.providers)-1 {
			return nil, err
		}
		log.Warn().Err(err).Str("provider", p.Name()).Msg("analysis provider failed, trying next")
	}
	return nil, errors.New("analyze: no providers configured")
}

// HeuristicProvider is the terminal fallback: a deterministic extractor that
// never fails. It splits the transcript into sentence-like chunks and fills
// the category's first scalar and first list field.
type HeuristicProvider struct{}

func (HeuristicProvider) Name() string { return "heuristic" }

func (HeuristicProvider) Analyze(_ context.Context, req Request) (*Analysis, error) {
	a := NewAnalysis(req.Category)
	schema := SchemaFor(req.Category)

	var chunks []string
	for _, part := range strings.Split(req.TranscriptText, ".") {
		if part = strings.TrimSpace(part); len([]rune(part)) > 10 {
			chunks = append(chunks, part)
		}
	}

	if len(schema.Scalars) > 0 {
		if len(chunks) > 0 {
			a.Scalars[schema.Scalars[0]] = chunks[0]
		} else {
			a.Scalars[schema.Scalars[0]] = "회의 분석 불가 (API 연결 실패)"
		}
	}
	if len(schema.Lists) > 0 && len(chunks) > 1 {
		rest := chunks[1:]
		if len(rest) > 3 {
			rest = rest[:3]
		}
		a.Lists[schema.Lists[0]] = append([]string{}, rest...)
	}

	// Flag the degraded result so the reviewer knows to re-run analysis.
	if last := lastListField(schema); last != "" {
		a.Lists[last] = append(a.Lists[last], "API 연결 복구 후 재분석을 권장합니다.")
	}

	return a, nil
}

func lastListField(schema Schema) string {
	if len(schema.Lists) == 0 {
		return ""
	}
	return schema.Lists[len(schema.Lists)-1]
}
