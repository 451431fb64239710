package analyze

// Category selects the analysis schema, note template, and storage folder
// for one job.
type Category string

const (
	CategoryMeeting    Category = "meeting"
	CategoryDiscussion Category = "discussion"
	CategoryVoiceMemo  Category = "voice_memo"
	CategoryDaily      Category = "daily"
	CategoryLecture    Category = "lecture"
	CategoryReference  Category = "reference"
)

// DefaultCategory is used for empty or unrecognized category tags.
const DefaultCategory = CategoryMeeting

// Normalize maps an empty or unrecognized category tag to the default, so
// schema, prompt, note template, and folder lookups all agree on one rule
// set.
func Normalize(raw string) Category {
	if _, ok := schemas[Category(raw)]; ok {
		return Category(raw)
	}
	return DefaultCategory
}

// DualNote reports whether a category produces a main note plus a linked
// full-transcript note.
func (c Category) DualNote() bool {
	return c == CategoryMeeting || c == CategoryDiscussion
}

// Schema describes the field shape of a category's analysis record. Field
// order is the render order in prompts and notes.
type Schema struct {
	Scalars []string
	Lists   []string
}

var schemas = map[Category]Schema{
	CategoryMeeting: {
		Scalars: []string{"purpose"},
		Lists:   []string{"discussion", "decisions", "action_items", "follow_up"},
	},
	CategoryDiscussion: {
		Scalars: []string{"purpose"},
		Lists:   []string{"discussion", "decisions", "action_items", "follow_up"},
	},
	CategoryVoiceMemo: {
		Scalars: []string{"summary"},
		Lists:   []string{"key_points", "action_items"},
	},
	CategoryDaily: {
		Scalars: []string{"reflection"},
		Lists:   []string{"tasks_done", "tasks_tomorrow", "issues"},
	},
	CategoryLecture: {
		Scalars: []string{"summary"},
		Lists:   []string{"key_concepts", "important_points", "references", "questions"},
	},
	CategoryReference: {
		Scalars: []string{"summary", "methodology", "applicability"},
		Lists:   []string{"key_findings", "citations"},
	},
}

// SchemaFor returns a category's schema, falling back to the default
// category for unknown tags.
func SchemaFor(category Category) Schema {
	if s, ok := schemas[category]; ok {
		return s
	}
	return schemas[DefaultCategory]
}

// Analysis is a category-shaped record of scalar and list fields. All fields
// of the category's schema are always present; absent content is represented
// by an empty string or an empty (non-nil) list.
type Analysis struct {
	Category Category            `json:"category"`
	Scalars  map[string]string   `json:"scalars"`
	Lists    map[string][]string `json:"lists"`
}

// NewAnalysis returns an Analysis with every schema field at its zero value.
func NewAnalysis(category Category) *Analysis {
	schema := SchemaFor(category)
	a := &Analysis{
		Category: category,
		Scalars:  make(map[string]string, len(schema.Scalars)),
		Lists:    make(map[string][]string, len(schema.Lists)),
	}
	for _, f := range schema.Scalars {
		a.Scalars[f] = ""
	}
	for _, f := range schema.Lists {
		a.Lists[f] = []string{}
	}
	return a
}

// Scalar returns a scalar field value, empty for unknown fields.
func (a *Analysis) Scalar(field string) string {
	return a.Scalars[field]
}

// List returns a list field value, never nil for schema fields.
func (a *Analysis) List(field string) []string {
	if v, ok := a.Lists[field]; ok {
		return v
	}
	return []string{}
}

// FromFields builds an Analysis from a loose field map, e.g. a reviewer's
// edited payload. Values outside the category schema are dropped; strings
// fill scalar fields and string slices fill list fields.
func FromFields(category Category, fields map[string]any) *Analysis {
	a := NewAnalysis(category)
	schema := SchemaFor(category)

	for _, f := range schema.Scalars {
		if v, ok := fields[f].(string); ok {
			a.Scalars[f] = v
		}
	}
	for _, f := range schema.Lists {
		switch v := fields[f].(type) {
		case []string:
			a.Lists[f] = append([]string{}, v...)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				}
			}
			a.Lists[f] = items
		}
	}
	return a
}
