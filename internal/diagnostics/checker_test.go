package diagnostics

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/Jungsungyoung/whisper-obsidian/internal/config"
)

func testChecker(vaultExists bool, tools map[string]bool, pythonImports bool) *Checker {
	return &Checker{
		lookPath: func(name string) (string, error) {
			if tools[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		stat: func(path string) (os.FileInfo, error) {
			if vaultExists {
				return os.Stat(os.TempDir())
			}
			return nil, os.ErrNotExist
		},
		mkdirAll: func(string, os.FileMode) error { return nil },
		runner: func(_ context.Context, name string, args ...string) error {
			if name == "nvidia-smi" {
				return errors.New("no gpu")
			}
			if !pythonImports {
				return errors.New("ModuleNotFoundError")
			}
			return nil
		},
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Vault.Path = "/vault"
	cfg.Upload.Dir = "/tmp/uploads"
	cfg.Whisper.Python = "python3"
	cfg.LLM.GeminiAPIKey = "key"
	return cfg
}

func itemByName(t *testing.T, report Report, name string) Item {
	t.Helper()
	for _, item := range report.Items {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("no item %q in report", name)
	return Item{}
}

func TestRunAllHealthy(t *testing.T) {
	c := testChecker(true, map[string]bool{"python3": true, "ffmpeg": true}, true)
	report := c.Run(context.Background(), testConfig())

	if report.HasFailures {
		t.Fatalf("unexpected failures: %+v", report.Items)
	}
	if item := itemByName(t, report, "Vault path"); item.Status != StatusPass {
		t.Fatalf("vault = %+v", item)
	}
	// Missing OpenAI key warns but does not fail.
	if item := itemByName(t, report, "OpenAI API key"); item.Status != StatusWarn {
		t.Fatalf("openai = %+v", item)
	}
	// nvidia-smi absent is informational only.
	if item := itemByName(t, report, "GPU"); item.Status != StatusWarn {
		t.Fatalf("gpu = %+v", item)
	}
}

func TestRunMissingVaultFails(t *testing.T) {
	c := testChecker(false, map[string]bool{"python3": true, "ffmpeg": true}, true)
	report := c.Run(context.Background(), testConfig())

	if !report.HasFailures {
		t.Fatal("missing vault not reported as failure")
	}
	if item := itemByName(t, report, "Vault path"); item.Status != StatusFail {
		t.Fatalf("vault = %+v", item)
	}
}

func TestRunMissingWhisperXFails(t *testing.T) {
	c := testChecker(true, map[string]bool{"python3": true, "ffmpeg": true}, false)
	report := c.Run(context.Background(), testConfig())

	item := itemByName(t, report, "whisperx")
	if item.Status != StatusFail || item.Hint == "" {
		t.Fatalf("whisperx = %+v", item)
	}
}
