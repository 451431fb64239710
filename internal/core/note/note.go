package note

import (
	"strings"
	"time"

	"github.com/Jungsungyoung/whisper-obsidian/internal/core/analyze"
	"github.com/Jungsungyoung/whisper-obsidian/internal/core/transcript"
)

// Data is the merged view handed to the builders. It is immutable for one
// save. SourceText carries the original body of a markdown import; when set,
// every category produces a main note plus a linked source note.
type Data struct {
	Date          time.Time
	Title         string
	AudioFilename string
	Duration      string
	Speakers      []string
	Analysis      *analyze.Analysis
	Transcript    []transcript.Segment
	Project       string
	Category      analyze.Category
	SourceText    string
}

// Bracketed filename tags per category.
var filenameTags = map[analyze.Category]string{
	analyze.CategoryMeeting:    "회의",
	analyze.CategoryDiscussion: "논의",
	analyze.CategoryVoiceMemo:  "메모",
	analyze.CategoryDaily:      "일지",
	analyze.CategoryLecture:    "강의",
	analyze.CategoryReference:  "자료",
}

const (
	transcriptTag = "전사"
	sourceTag     = "원문"
)

func tagFor(category analyze.Category) string {
	if tag, ok := filenameTags[category]; ok {
		return tag
	}
	return filenameTags[analyze.DefaultCategory]
}

// Filenames returns the main note filename and the companion filename: the
// transcript note for dual-note categories, the source note for markdown
// imports, empty otherwise. Daily notes use the date alone; every other
// category embeds the title.
func Filenames(data Data) (main, secondary string) {
	dateStr := data.Date.Format("2006-01-02")

	if data.Category == analyze.CategoryDaily {
		main = "[" + tagFor(data.Category) + "] " + dateStr + ".md"
		if data.SourceText != "" {
			secondary = "[" + sourceTag + "] " + dateStr + ".md"
		}
		return main, secondary
	}

	main = "[" + tagFor(data.Category) + "] " + dateStr + " " + data.Title + ".md"
	switch {
	case data.SourceText != "":
		secondary = "[" + sourceTag + "] " + dateStr + " " + data.Title + ".md"
	case data.Category.DualNote():
		secondary = "[" + transcriptTag + "] " + dateStr + " " + data.Title + ".md"
	}
	return main, secondary
}

// Build renders the document bodies for a note. Dual-note categories return
// a main note and a transcript note cross-linked by title reference; the
// secondary body is empty for single-note categories. Markdown imports always
// pair the main note with a source note preserving the original text.
func Build(data Data) (mainBody, secondaryBody string) {
	if data.SourceText != "" {
		if data.Category.DualNote() {
			return buildSummaryNote(data), buildSourceNote(data)
		}
		return buildSingleNote(data), buildSourceNote(data)
	}
	if data.Category.DualNote() {
		return buildSummaryNote(data), buildTranscriptNote(data)
	}
	return buildSingleNote(data), ""
}

// buildSummaryNote renders the main note for meeting and discussion
// categories.
func buildSummaryNote(data Data) string {
	dateStr := data.Date.Format("2006-01-02")
	mainFn, transcriptFn := Filenames(data)
	transcriptLink := strings.TrimSuffix(transcriptFn, ".md")

	noteType := "meeting"
	if data.Category == analyze.CategoryDiscussion {
		noteType = "discussion"
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("date: " + dateStr + "\n")
	b.WriteString("type: " + noteType + "\n")
	b.WriteString("project: \"" + data.Project + "\"\n")
	b.WriteString("participants:\n")
	for _, s := range data.Speakers {
		b.WriteString("  - " + s + "\n")
	}
	b.WriteString("tags:\n  - " + noteType + "\n  - ai-transcribed\n")
	b.WriteString("audio: \"" + data.AudioFilename + "\"\n")
	b.WriteString("duration: \"" + data.Duration + "\"\n")
	b.WriteString("---\n\n")

	b.WriteString("# " + strings.TrimSuffix(mainFn, ".md") + "\n\n")
	b.WriteString("> [!note] AI 자동 생성\n")
	if data.SourceText != "" {
		b.WriteString("> LLM으로 자동 생성. 원문: [[" + transcriptLink + "]]\n\n")
	} else {
		b.WriteString("> Whisper + LLM으로 자동 생성. 전체 전사: [[" + transcriptLink + "]]\n\n")
	}

	b.WriteString("## 목적\n" + data.Analysis.Scalar("purpose") + "\n\n")
	b.WriteString("## 주요 논의\n" + bullets(data.Analysis.List("discussion")) + "\n\n")
	b.WriteString("## 결정 사항\n" + bullets(data.Analysis.List("decisions")) + "\n\n")
	b.WriteString("## Action Items\n" + checkboxes(data.Analysis.List("action_items"), false) + "\n\n")
	b.WriteString("## 후속 질문\n" + bullets(data.Analysis.List("follow_up")) + "\n")
	return b.String()
}

// buildTranscriptNote renders the full-transcript companion note.
func buildTranscriptNote(data Data) string {
	dateStr := data.Date.Format("2006-01-02")
	mainFn, transcriptFn := Filenames(data)
	mainLink := strings.TrimSuffix(mainFn, ".md")

	noteType := "meeting-transcript"
	if data.Category == analyze.CategoryDiscussion {
		noteType = "discussion-transcript"
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("date: " + dateStr + "\n")
	b.WriteString("type: " + noteType + "\n")
	b.WriteString("tags:\n  - transcript\n")
	b.WriteString("---\n\n")

	b.WriteString("# " + strings.TrimSuffix(transcriptFn, ".md") + "\n\n")
	b.WriteString("> 요약: [[" + mainLink + "]]\n\n")

	for _, seg := range data.Transcript {
		b.WriteString("**[" + seg.Timestamp + "] " + seg.Speaker + ":** " + seg.Text + "\n")
	}
	return b.String()
}

// buildSourceNote renders the original-text companion note of a markdown
// import.
func buildSourceNote(data Data) string {
	dateStr := data.Date.Format("2006-01-02")
	mainFn, sourceFn := Filenames(data)
	mainLink := strings.TrimSuffix(mainFn, ".md")

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("date: " + dateStr + "\n")
	b.WriteString("type: md-source\n")
	b.WriteString("category: " + string(data.Category) + "\n")
	b.WriteString("tags:\n  - md-source\n")
	b.WriteString("---\n\n")

	b.WriteString("# " + strings.TrimSuffix(sourceFn, ".md") + "\n\n")
	b.WriteString("> 요약: [[" + mainLink + "]]\n\n")
	b.WriteString(data.SourceText + "\n")
	return b.String()
}

// Section layout for single-note categories. Checked/unchecked selects the
// checkbox render for list fields; plain fields render as bullets.
type section struct {
	header    string
	field     string
	scalar    bool
	checkbox  bool
	completed bool
}

var singleNoteSections = map[analyze.Category][]section{
	analyze.CategoryVoiceMemo: {
		{header: "요약", field: "summary", scalar: true},
		{header: "핵심 포인트", field: "key_points"},
		{header: "Action Items", field: "action_items", checkbox: true},
	},
	analyze.CategoryDaily: {
		{header: "오늘 한 일", field: "tasks_done", checkbox: true, completed: true},
		{header: "내일 할 일", field: "tasks_tomorrow", checkbox: true},
		{header: "이슈", field: "issues"},
		{header: "소감", field: "reflection", scalar: true},
	},
	analyze.CategoryLecture: {
		{header: "요약", field: "summary", scalar: true},
		{header: "핵심 개념", field: "key_concepts"},
		{header: "중요 포인트", field: "important_points"},
		{header: "참고 자료", field: "references"},
		{header: "질문", field: "questions"},
	},
	analyze.CategoryReference: {
		{header: "요약", field: "summary", scalar: true},
		{header: "핵심 발견", field: "key_findings"},
		{header: "방법론", field: "methodology", scalar: true},
		{header: "적용 가능성", field: "applicability", scalar: true},
		{header: "인용", field: "citations"},
	},
}

var singleNoteTypes = map[analyze.Category]string{
	analyze.CategoryVoiceMemo: "voice-memo",
	analyze.CategoryDaily:     "daily-log",
	analyze.CategoryLecture:   "lecture",
	analyze.CategoryReference: "reference",
}

// buildSingleNote renders voice_memo, daily, lecture, and reference notes
// from the category's section layout.
func buildSingleNote(data Data) string {
	dateStr := data.Date.Format("2006-01-02")
	mainFn, _ := Filenames(data)

	noteType, ok := singleNoteTypes[data.Category]
	if !ok {
		noteType = string(data.Category)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("date: " + dateStr + "\n")
	b.WriteString("type: " + noteType + "\n")
	b.WriteString("tags:\n  - " + string(data.Category) + "\n  - ai-transcribed\n")
	b.WriteString("audio: \"" + data.AudioFilename + "\"\n")
	b.WriteString("duration: \"" + data.Duration + "\"\n")
	b.WriteString("---\n\n")

	b.WriteString("# " + strings.TrimSuffix(mainFn, ".md") + "\n\n")

	sections := singleNoteSections[data.Category]
	for i, sec := range sections {
		b.WriteString("## " + sec.header + "\n")
		if sec.scalar {
			b.WriteString(data.Analysis.Scalar(sec.field))
		} else if sec.checkbox {
			b.WriteString(checkboxes(data.Analysis.List(sec.field), sec.completed))
		} else {
			b.WriteString(bullets(data.Analysis.List(sec.field)))
		}
		if i < len(sections)-1 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

func checkboxes(items []string, completed bool) string {
	mark := "- [ ] "
	if completed {
		mark = "- [x] "
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, mark+item)
	}
	return strings.Join(lines, "\n")
}
