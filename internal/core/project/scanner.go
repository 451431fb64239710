package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// activeStatus is the front-matter status marking a project as in progress.
const activeStatus = "진행"

// Project is one selectable target for discussion notes.
type Project struct {
	Display string `json:"display"`
	Link    string `json:"link"`
}

// Scanner finds active projects by reading dashboard notes inside the
// vault's projects folder.
type Scanner struct {
	vaultPath      string
	projectsFolder string
}

func NewScanner(vaultPath, projectsFolder string) *Scanner {
	return &Scanner{vaultPath: vaultPath, projectsFolder: projectsFolder}
}

// Active returns projects whose dashboard note declares an in-progress
// status. Folders without a readable dashboard are skipped silently; the
// scan never fails, it just returns what it could read.
func (s *Scanner) Active() []Project {
	projectsDir := filepath.Join(s.vaultPath, s.projectsFolder)
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return []Project{}
	}

	result := []Project{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(projectsDir, entry.Name())
		dashboards, err := filepath.Glob(filepath.Join(folder, "*Dashboard*.md"))
		if err != nil {
			continue
		}
		for _, dashboard := range dashboards {
			content, err := os.ReadFile(dashboard)
			if err != nil {
				continue
			}
			if !isActive(content) {
				continue
			}
			stem := strings.TrimSuffix(filepath.Base(dashboard), ".md")
			result = append(result, Project{
				Display: displayName(entry.Name()),
				Link:    "[[" + stem + "]]",
			})
		}
	}
	return result
}

// isActive parses the note's front matter and checks the status key.
func isActive(content []byte) bool {
	fm, ok := frontMatter(content)
	if !ok {
		return false
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(fm), yaml.Parser()); err != nil {
		log.Debug().Err(err).Msg("unparseable dashboard front matter")
		return false
	}
	return k.String("status") == activeStatus
}

// frontMatter extracts the bytes between the leading "---" delimiters.
func frontMatter(content []byte) ([]byte, bool) {
	text := string(content)
	if !strings.HasPrefix(text, "---") {
		return nil, false
	}
	rest := text[3:]
	end := strings.Index(rest, "---")
	if end < 0 {
		return nil, false
	}
	return []byte(rest[:end]), true
}

// displayName turns a project folder name into its display form: the leading
// ordering prefix before the first underscore is dropped and the remaining
// underscores become spaces. "2026_플랫폼_개편" becomes "플랫폼 개편".
func displayName(folder string) string {
	parts := strings.Split(folder, "_")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.Join(parts, " ")
}
