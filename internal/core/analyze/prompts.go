package analyze

import "strings"

// Per-category system prompts. The response format mirrors the section keys
// the parser extracts.

const meetingPrompt = `당신은 회의록 분석 전문가입니다.
주어진 회의 전사본을 분석해서 다음 형식으로 정확히 출력하세요.
각 섹션의 항목은 '- '로 시작하는 bullet point로 작성하세요.

PURPOSE: [회의 목적 한 줄]

DISCUSSION:
- [주요 논의 항목 1]
- [주요 논의 항목 2]

DECISIONS:
- [결정 사항 1]

ACTION_ITEMS:
- [할 일 내용 (담당자, ~마감일)]

FOLLOW_UP:
- [후속 질문이나 확인 필요 사항]

항목이 없으면 해당 섹션은 비워두세요.`

const voiceMemoPrompt = `당신은 음성 메모 분석 전문가입니다.
다음 형식으로 정확히 출력하세요.

SUMMARY: [한 줄 요약]

KEY_POINTS:
- [핵심 포인트]

ACTION_ITEMS:
- [할 일 항목]

항목이 없으면 해당 섹션은 비워두세요.`

const dailyPrompt = `당신은 업무 일지 분석 전문가입니다.
다음 형식으로 정확히 출력하세요.

TASKS_DONE:
- [오늘 완료한 업무]

TASKS_TOMORROW:
- [내일 할 일]

ISSUES:
- [문제나 이슈]

REFLECTION: [하루 한 줄 소감]

항목이 없으면 해당 섹션은 비워두세요.`

const lecturePrompt = `당신은 강의/세미나 내용 분석 전문가입니다.
다음 형식으로 정확히 출력하세요.

SUMMARY: [강의 내용 한 줄 요약]

KEY_CONCEPTS:
- [핵심 개념]

IMPORTANT_POINTS:
- [중요 포인트]

REFERENCES:
- [참고 자료나 출처]

QUESTIONS:
- [이해가 필요한 질문이나 추가 탐구 필요 항목]

항목이 없으면 해당 섹션은 비워두세요.`

const referencePrompt = `당신은 레퍼런스 리뷰 전문가입니다.
다음 형식으로 정확히 출력하세요.

SUMMARY: [레퍼런스 한 줄 요약]

KEY_FINDINGS:
- [핵심 발견사항]

METHODOLOGY: [연구/분석 방법론]

APPLICABILITY: [업무 적용 가능성]

CITATIONS:
- [인용 가능한 핵심 문장]

항목이 없으면 해당 섹션은 비워두세요.`

var prompts = map[Category]string{
	CategoryMeeting:    meetingPrompt,
	CategoryDiscussion: meetingPrompt, // same template as meeting
	CategoryVoiceMemo:  voiceMemoPrompt,
	CategoryDaily:      dailyPrompt,
	CategoryLecture:    lecturePrompt,
	CategoryReference:  referencePrompt,
}

// PromptFor returns a category's instruction template, falling back to the
// default category for unknown tags.
func PromptFor(category Category) string {
	if p, ok := prompts[category]; ok {
		return p
	}
	return prompts[DefaultCategory]
}

// BuildUserPrompt prepends an optional one-line context marker to the
// transcript text.
func BuildUserPrompt(context, transcriptText string) string {
	ctxLine := ""
	if c := strings.TrimSpace(context); c != "" {
		ctxLine = "[회의 맥락: " + c + "]\n\n"
	}
	return ctxLine + "다음 내용을 분석해주세요:\n\n" + transcriptText
}
