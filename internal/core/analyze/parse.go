package analyze

import (
	"regexp"
	"strings"
)

// Parse extracts a category-shaped analysis from a semi-structured LLM
// response. Section keys are the upper-cased schema field names. Missing
// sections yield the field's zero value; malformed input never errors.
func Parse(raw string, category Category) *Analysis {
	a := NewAnalysis(category)
	schema := SchemaFor(category)

	for _, field := range schema.Scalars {
		a.Scalars[field] = extractLine(raw, strings.ToUpper(field))
	}
	for _, field := range schema.Lists {
		a.Lists[field] = extractList(raw, strings.ToUpper(field))
	}
	return a
}

// extractLine captures a single-line `KEY: value` up to end of line.
func extractLine(text, key string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(key) + `:[ \t]*(.+)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var bulletRe = regexp.MustCompile(`- (.+)`)

// extractList captures the bullet block following `KEY:`. A key with no
// bullets yields an empty list, not an error.
func extractList(text, key string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(key) + `:[ \t]*\n((?:- .+\n?)*)`)
	m := re.FindStringSubmatch(text)
	items := []string{}
	if m == nil {
		return items
	}
	for _, bm := range bulletRe.FindAllStringSubmatch(m[1], -1) {
		if item := strings.TrimSpace(bm[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}
