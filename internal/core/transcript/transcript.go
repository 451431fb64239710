package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSpeaker is the raw label used when diarization is unavailable.
const DefaultSpeaker = "SPEAKER_00"

// maxSpeakers caps the label alphabet at Speaker A..Z.
const maxSpeakers = 26

// Segment is a timestamped, speaker-attributed span of transcribed speech.
type Segment struct {
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// Method records which transcription path produced a result.
type Method string

const (
	MethodLocal Method = "local"
	MethodAPI   Method = "api"
	// MethodText marks markdown imports, which carry no audio at all.
	MethodText Method = "text"
)

// Result is a full transcription outcome.
type Result struct {
	Segments []Segment `json:"segments"`
	FullText string    `json:"full_text"`
	Duration string    `json:"duration"`
	Method   Method    `json:"method"`
}

// Labeler assigns stable display labels (Speaker A, Speaker B, ...) to raw
// diarization labels in order of first appearance.
type Labeler struct {
	byRaw map[string]string
	next  int
}

func NewLabeler() *Labeler {
	return &Labeler{byRaw: make(map[string]string)}
}

// Label returns the display label for a raw diarization label, assigning a
// new one on first sight. More than 26 distinct speakers is a hard failure.
func (l *Labeler) Label(raw string) (string, error) {
	if label, ok := l.byRaw[raw]; ok {
		return label, nil
	}
	if l.next >= maxSpeakers {
		return "", fmt.Errorf("speaker count exceeds %d; cannot assign label for %q", maxSpeakers, raw)
	}
	label := "Speaker " + string(rune('A'+l.next))
	l.byRaw[raw] = label
	l.next++
	return label, nil
}

// ApplySpeakerMap replaces segment speaker labels with user-supplied display
// names. Labels missing from the map, or mapped to an empty name, are kept.
func ApplySpeakerMap(segments []Segment, speakerMap map[string]string) {
	if len(speakerMap) == 0 {
		return
	}
	for i := range segments {
		if mapped := speakerMap[segments[i].Speaker]; mapped != "" {
			segments[i].Speaker = mapped
		}
	}
}

// Speakers returns the sorted distinct speaker labels of a segment sequence.
func Speakers(segments []Segment) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, seg := range segments {
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		out = append(out, seg.Speaker)
	}
	sort.Strings(out)
	return out
}

// JoinText concatenates non-empty segment texts with single spaces.
func JoinText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS when hours are
// non-zero.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	h := s / 3600
	m := (s % 3600) / 60
	s = s % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
