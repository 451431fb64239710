package analyze

import (
	"reflect"
	"testing"
)

// TestParseMeeting verifies full section extraction for the meeting schema.
func TestParseMeeting(t *testing.T) {
	raw := `PURPOSE: 스프린트 계획 수립

DISCUSSION:
- 백로그 우선순위 검토
- 배포 일정 조율

DECISIONS:
- 금요일 배포 확정

ACTION_ITEMS:
- 릴리즈 노트 작성 (김철수, ~금요일)

FOLLOW_UP:
- QA 리소스 확인 필요
`
	a := Parse(raw, CategoryMeeting)

	if got := a.Scalar("purpose"); got != "스프린트 계획 수립" {
		t.Fatalf("purpose = %q", got)
	}
	if got := a.List("discussion"); !reflect.DeepEqual(got, []string{"백로그 우선순위 검토", "배포 일정 조율"}) {
		t.Fatalf("discussion = %v", got)
	}
	if got := a.List("decisions"); !reflect.DeepEqual(got, []string{"금요일 배포 확정"}) {
		t.Fatalf("decisions = %v", got)
	}
	if got := a.List("action_items"); !reflect.DeepEqual(got, []string{"릴리즈 노트 작성 (김철수, ~금요일)"}) {
		t.Fatalf("action_items = %v", got)
	}
	if got := a.List("follow_up"); !reflect.DeepEqual(got, []string{"QA 리소스 확인 필요"}) {
		t.Fatalf("follow_up = %v", got)
	}
}

// TestParseNoMarkersYieldsZeroValues checks that input without any expected
// section markers produces empty strings and empty non-nil lists for every
// category.
func TestParseNoMarkersYieldsZeroValues(t *testing.T) {
	categories := []Category{
		CategoryMeeting, CategoryDiscussion, CategoryVoiceMemo,
		CategoryDaily, CategoryLecture, CategoryReference,
	}

	for _, cat := range categories {
		a := Parse("이 텍스트에는 어떤 섹션 마커도 없습니다.", cat)
		schema := SchemaFor(cat)

		for _, f := range schema.Scalars {
			if got := a.Scalar(f); got != "" {
				t.Errorf("%s: scalar %s = %q, want empty", cat, f, got)
			}
		}
		for _, f := range schema.Lists {
			got := a.List(f)
			if got == nil {
				t.Errorf("%s: list %s is nil, want empty slice", cat, f)
			}
			if len(got) != 0 {
				t.Errorf("%s: list %s = %v, want empty", cat, f, got)
			}
		}
	}
}

// TestParseHeaderWithoutBullets checks that a list header followed by zero
// bullet lines yields an empty list.
func TestParseHeaderWithoutBullets(t *testing.T) {
	raw := "SUMMARY: 회고 메모\n\nKEY_POINTS:\n\nACTION_ITEMS:\n- 문서 업데이트\n"
	a := Parse(raw, CategoryVoiceMemo)

	if got := a.List("key_points"); got == nil || len(got) != 0 {
		t.Fatalf("key_points = %#v, want empty slice", got)
	}
	if got := a.List("action_items"); !reflect.DeepEqual(got, []string{"문서 업데이트"}) {
		t.Fatalf("action_items = %v", got)
	}
}

// TestParseUnknownCategoryFallsBack checks unknown categories use the
// default rule set.
func TestParseUnknownCategoryFallsBack(t *testing.T) {
	a := Parse("PURPOSE: 목적 한 줄\n", Category("podcast"))
	if got := a.Scalar("purpose"); got != "목적 한 줄" {
		t.Fatalf("purpose = %q", got)
	}
}

func TestParseReferenceScalars(t *testing.T) {
	raw := `SUMMARY: 캐시 일관성 논문 요약
METHODOLOGY: 시뮬레이션 기반 비교
APPLICABILITY: 세션 스토어 설계에 적용 가능

KEY_FINDINGS:
- 쓰기 지연이 지배적 비용

CITATIONS:
`
	a := Parse(raw, CategoryReference)
	if got := a.Scalar("methodology"); got != "시뮬레이션 기반 비교" {
		t.Fatalf("methodology = %q", got)
	}
	if got := a.Scalar("applicability"); got != "세션 스토어 설계에 적용 가능" {
		t.Fatalf("applicability = %q", got)
	}
	if got := a.List("citations"); len(got) != 0 {
		t.Fatalf("citations = %v, want empty", got)
	}
}

func TestFromFieldsDropsUnknownKeys(t *testing.T) {
	a := FromFields(CategoryMeeting, map[string]any{
		"purpose":    "수정된 목적",
		"decisions":  []any{"결정 A", "결정 B"},
		"unrelated":  "버려짐",
		"key_points": []any{"다른 스키마의 필드"},
	})

	if got := a.Scalar("purpose"); got != "수정된 목적" {
		t.Fatalf("purpose = %q", got)
	}
	if got := a.List("decisions"); !reflect.DeepEqual(got, []string{"결정 A", "결정 B"}) {
		t.Fatalf("decisions = %v", got)
	}
	if _, ok := a.Scalars["unrelated"]; ok {
		t.Fatal("unknown key retained")
	}
	if _, ok := a.Lists["key_points"]; ok {
		t.Fatal("foreign schema key retained")
	}
}
