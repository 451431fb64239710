package vault

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/note"
	"github.com/rs/zerolog/log"
)

// Folders maps the vault's category destinations, relative to the vault
// root.
type Folders struct {
	Meetings  string
	Inbox     string
	Daily     string
	Areas     string
	Projects  string
	Resources string
}

// Writer persists rendered notes into the vault.
type Writer struct {
	vaultPath string
	vaultName string
	folders   Folders
}

func NewWriter(vaultPath, vaultName string, folders Folders) *Writer {
	if vaultName == "" {
		vaultName = filepath.Base(vaultPath)
	}
	return &Writer{vaultPath: vaultPath, vaultName: vaultName, folders: folders}
}

// SaveResult carries absolute file paths and vault-internal open links.
type SaveResult struct {
	MainPath       string `json:"main_path"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	MainURI        string `json:"main_uri"`
	TranscriptURI  string `json:"transcript_uri,omitempty"`
}

// Save writes the rendered bodies into the category's destination folder and
// returns paths plus obsidian open links. Identical date+title collisions
// overwrite; the writer does not deduplicate.
func (w *Writer) Save(data note.Data, mainBody, secondaryBody string) (*SaveResult, error) {
	dir := filepath.Join(w.vaultPath, w.folderFor(data))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}

	mainFn, secondaryFn := note.Filenames(data)

	mainPath := filepath.Join(dir, mainFn)
	if err := os.WriteFile(mainPath, []byte(mainBody), 0o644); err != nil {
		return nil, fmt.Errorf("write note: %w", err)
	}

	result := &SaveResult{
		MainPath: mainPath,
		MainURI:  w.openURI(mainFn),
	}

	if secondaryFn != "" && secondaryBody != "" {
		transcriptPath := filepath.Join(dir, secondaryFn)
		if err := os.WriteFile(transcriptPath, []byte(secondaryBody), 0o644); err != nil {
			return nil, fmt.Errorf("write transcript note: %w", err)
		}
		result.TranscriptPath = transcriptPath
		result.TranscriptURI = w.openURI(secondaryFn)
	}

	log.Info().Str("category", string(data.Category)).Str("path", mainPath).Msg("note saved")
	return result, nil
}

// folderFor resolves the destination directory for a note. Discussion notes
// land in the project's own folder; everything else uses the fixed mapping.
func (w *Writer) folderFor(data note.Data) string {
	switch data.Category {
	case analyze.CategoryMeeting:
		return w.folders.Meetings
	case analyze.CategoryDiscussion:
		return filepath.Join(w.folders.Projects, ProjectName(data.Project))
	case analyze.CategoryDaily:
		return w.folders.Daily
	case analyze.CategoryLecture:
		return w.folders.Areas
	case analyze.CategoryReference:
		return w.folders.Resources
	default:
		// voice_memo and unrecognized categories go to the inbox.
		return w.folders.Inbox
	}
}

// ProjectName derives a folder name from a project reference by stripping
// wiki-link syntax: "[[2026_플랫폼_Dashboard|플랫폼]]" -> "2026_플랫폼_Dashboard".
func ProjectName(ref string) string {
	name := strings.TrimSpace(ref)
	name = strings.TrimPrefix(name, "[[")
	name = strings.TrimSuffix(name, "]]")
	if i := strings.Index(name, "|"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// openURI builds an obsidian://open link for a note filename.
func (w *Writer) openURI(filename string) string {
	stem := strings.TrimSuffix(filename, ".md")
	return "obsidian://open?vault=" + url.PathEscape(w.vaultName) + "&file=" + url.PathEscape(stem)
}
