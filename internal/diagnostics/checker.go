// Package diagnostics validates the external tools and paths the pipeline
// depends on, for the check command and pre-flight troubleshooting.
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/Jungsungyoung/whisper-obsidian/internal/config"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one check outcome.
type Item struct {
	Name    string
	Status  Status
	Message string
	Hint    string
}

// Report is the combined outcome of all checks.
type Report struct {
	HasFailures bool
	Items       []Item
}

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
	mkdirAll func(string, os.FileMode) error
	runner   func(ctx context.Context, name string, args ...string) error
}

func NewChecker() *Checker {
	return &Checker{
		lookPath: exec.LookPath,
		stat:     os.Stat,
		mkdirAll: os.MkdirAll,
		runner: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Run executes all checks against the loaded configuration.
func (c *Checker) Run(ctx context.Context, cfg *config.Config) Report {
	items := []Item{
		c.checkVault(cfg.Vault.Path),
		c.checkUploadDir(cfg.Upload.Dir),
		c.checkPython(cfg.Whisper.Python),
		c.checkWhisperX(ctx, cfg.Whisper.Python),
		c.checkTool("ffmpeg", "Install ffmpeg; whisper needs it to decode audio."),
		c.checkGPU(ctx),
		checkKey("Gemini API key", cfg.LLM.GeminiAPIKey, "Gemini 없이도 동작하지만 분석은 OpenAI 또는 휴리스틱으로 넘어갑니다."),
		checkKey("OpenAI API key", cfg.LLM.OpenAIAPIKey, "전사 원격 폴백과 OpenAI 분석이 비활성화됩니다."),
		checkKey("HuggingFace token", cfg.Whisper.HFToken, "화자 분리가 생략되고 모든 발화가 한 화자로 묶입니다."),
	}

	report := Report{Items: items}
	for _, item := range items {
		if item.Status == StatusFail {
			report.HasFailures = true
			break
		}
	}
	return report
}

func (c *Checker) checkVault(path string) Item {
	item := Item{Name: "Vault path"}
	if strings.TrimSpace(path) == "" {
		item.Status = StatusFail
		item.Message = "Vault path is not configured."
		item.Hint = "Set WO_VAULT_PATH or vault.path in the config file."
		return item
	}
	info, err := c.stat(path)
	if err != nil || !info.IsDir() {
		item.Status = StatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Vault does not exist: %s", path)
		} else {
			item.Message = fmt.Sprintf("Vault is not a readable directory: %s", path)
		}
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Vault found: %s", path)
	return item
}

func (c *Checker) checkUploadDir(dir string) Item {
	item := Item{Name: "Upload directory"}
	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot create upload directory: %s", dir)
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Upload directory ready: %s", dir)
	return item
}

func (c *Checker) checkPython(python string) Item {
	item := Item{Name: "Python"}
	path, err := c.lookPath(python)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Python not found in PATH: %s", python)
		item.Hint = "Install Python 3 or set whisper.python to the interpreter path."
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

func (c *Checker) checkWhisperX(ctx context.Context, python string) Item {
	item := Item{Name: "whisperx"}
	if err := c.runner(ctx, python, "-c", "import whisperx"); err != nil {
		item.Status = StatusFail
		item.Message = "whisperx is not importable."
		item.Hint = "pip install whisperx"
		return item
	}
	item.Status = StatusPass
	item.Message = "whisperx importable."
	return item
}

func (c *Checker) checkTool(name, hint string) Item {
	path, err := c.lookPath(name)
	if err != nil {
		return Item{Name: name, Status: StatusFail, Message: fmt.Sprintf("Tool not found in PATH: %s", name), Hint: hint}
	}
	return Item{Name: name, Status: StatusPass, Message: fmt.Sprintf("Found at %s", path)}
}

// checkGPU is informational; CPU-only setups work with the int8 profile.
func (c *Checker) checkGPU(ctx context.Context) Item {
	item := Item{Name: "GPU"}
	if _, err := c.lookPath("nvidia-smi"); err != nil {
		item.Status = StatusWarn
		item.Message = "nvidia-smi not found; transcription runs on CPU (int8)."
		return item
	}
	if err := c.runner(ctx, "nvidia-smi", "-L"); err != nil {
		item.Status = StatusWarn
		item.Message = "nvidia-smi present but no usable GPU; transcription runs on CPU (int8)."
		return item
	}
	item.Status = StatusPass
	item.Message = "CUDA GPU detected; float16 profile will be used."
	return item
}

func checkKey(name, value, consequence string) Item {
	if strings.TrimSpace(value) == "" {
		return Item{Name: name, Status: StatusWarn, Message: "Not configured.", Hint: consequence}
	}
	return Item{Name: name, Status: StatusPass, Message: "Configured."}
}
