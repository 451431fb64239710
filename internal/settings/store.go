// Package settings manages the runtime-editable .env file behind the
// settings panel. Values written here take effect on the next process start;
// secrets are masked on read and mask placeholders are ignored on write.
package settings

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Mask replaces secret values in read results.
const Mask = "●●●●●●●●"

// Keys lists every setting exposed through the panel, in display order.
var Keys = []string{
	"WHISPER_MODEL",
	"GEMINI_API_KEY",
	"OPENAI_API_KEY",
	"HF_TOKEN",
	"VAULT_PATH",
	"MEETINGS_FOLDER",
	"INBOX_FOLDER",
	"DAILY_FOLDER",
	"AREAS_FOLDER",
	"PROJECTS_FOLDER",
	"RESOURCES_FOLDER",
	"DOMAIN_VOCAB",
}

var secretKeys = map[string]struct{}{
	"GEMINI_API_KEY": {},
	"OPENAI_API_KEY": {},
	"HF_TOKEN":       {},
}

// Store reads and writes one KEY=value env file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Read returns every panel key with secrets masked. Missing keys come back
// as empty strings.
func (s *Store) Read() (map[string]string, error) {
	env, err := s.parse()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		v := env[k]
		if _, secret := secretKeys[k]; secret && v != "" {
			v = Mask
		}
		out[k] = v
	}
	return out, nil
}

// Write merges updates into the env file. Comments and unrelated lines are
// kept as-is; empty values and untouched mask placeholders are dropped so a
// round-tripped read never clobbers a stored secret.
func (s *Store) Write(updates map[string]string) error {
	effective := make(map[string]string, len(updates))
	for k, v := range updates {
		if v == "" || v == Mask {
			continue
		}
		effective[k] = v
	}
	if len(effective) == 0 {
		return nil
	}

	var lines []string
	if content, err := os.ReadFile(s.path); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
			stripped := strings.TrimSpace(line)
			if stripped != "" && !strings.HasPrefix(stripped, "#") {
				if k, _, found := strings.Cut(stripped, "="); found {
					if _, replaced := effective[strings.TrimSpace(k)]; replaced {
						continue
					}
				}
			}
			lines = append(lines, line)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read settings file: %w", err)
	}

	keys := make([]string, 0, len(effective))
	for k := range effective {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, k+"="+effective[k])
	}

	if err := os.WriteFile(s.path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// parse reads raw KEY=value pairs, skipping comments and malformed lines.
func (s *Store) parse() (map[string]string, error) {
	result := make(map[string]string)
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		result[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return result, nil
}
