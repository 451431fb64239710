package transcript

import (
	"fmt"
	"reflect"
	"testing"
)

// TestLabelerOrderOfAppearance verifies stable label assignment.
func TestLabelerOrderOfAppearance(t *testing.T) {
	l := NewLabeler()

	var got []string
	for _, raw := range []string{"SPEAKER_00", "SPEAKER_01", "SPEAKER_00"} {
		label, err := l.Label(raw)
		if err != nil {
			t.Fatalf("label %s: %v", raw, err)
		}
		got = append(got, label)
	}

	want := []string{"Speaker A", "Speaker B", "Speaker A"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
}

// TestLabelerCapIsHardFailure checks the 26-speaker cap errors instead of
// silently truncating.
func TestLabelerCapIsHardFailure(t *testing.T) {
	l := NewLabeler()
	for i := 0; i < 26; i++ {
		if _, err := l.Label(fmt.Sprintf("SPEAKER_%02d", i)); err != nil {
			t.Fatalf("speaker %d: %v", i, err)
		}
	}

	if _, err := l.Label("SPEAKER_26"); err == nil {
		t.Fatal("expected error past 26 speakers")
	}

	// Already-assigned labels stay resolvable after the cap is hit.
	label, err := l.Label("SPEAKER_00")
	if err != nil {
		t.Fatalf("relabel: %v", err)
	}
	if label != "Speaker A" {
		t.Fatalf("label = %s, want Speaker A", label)
	}
}

func TestApplySpeakerMap(t *testing.T) {
	segments := []Segment{
		{Timestamp: "00:01", Speaker: "Speaker A", Text: "안녕"},
		{Timestamp: "00:05", Speaker: "Speaker B", Text: "네"},
		{Timestamp: "00:15", Speaker: "Speaker A", Text: "잠깐요"},
	}

	ApplySpeakerMap(segments, map[string]string{"Speaker A": "홍길동", "Speaker B": "김철수"})

	want := []string{"홍길동", "김철수", "홍길동"}
	for i, seg := range segments {
		if seg.Speaker != want[i] {
			t.Fatalf("segment %d speaker = %s, want %s", i, seg.Speaker, want[i])
		}
	}
}

// TestApplySpeakerMapKeepsUnmapped verifies missing and empty mappings keep
// the original label, and that re-application is idempotent.
func TestApplySpeakerMapKeepsUnmapped(t *testing.T) {
	segments := []Segment{
		{Timestamp: "00:01", Speaker: "Speaker A", Text: "안녕"},
		{Timestamp: "00:05", Speaker: "Speaker D", Text: "감사합니다"},
	}
	m := map[string]string{"Speaker A": "", "Speaker B": "김철수"}

	ApplySpeakerMap(segments, m)
	ApplySpeakerMap(segments, m)

	if segments[0].Speaker != "Speaker A" {
		t.Fatalf("empty mapping changed label to %s", segments[0].Speaker)
	}
	if segments[1].Speaker != "Speaker D" {
		t.Fatalf("missing mapping changed label to %s", segments[1].Speaker)
	}
}

func TestApplySpeakerMapEmptyMapNoChange(t *testing.T) {
	segments := []Segment{{Timestamp: "00:01", Speaker: "Speaker A", Text: "안녕"}}
	ApplySpeakerMap(segments, nil)
	if segments[0].Speaker != "Speaker A" {
		t.Fatalf("nil map changed label to %s", segments[0].Speaker)
	}
}

func TestSpeakersSortedDistinct(t *testing.T) {
	segments := []Segment{
		{Speaker: "Speaker B"},
		{Speaker: "Speaker A"},
		{Speaker: "Speaker B"},
	}
	got := Speakers(segments)
	if !reflect.DeepEqual(got, []string{"Speaker A", "Speaker B"}) {
		t.Fatalf("speakers = %v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3725, "01:02:05"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tc.seconds, got, tc.want)
		}
	}
}
