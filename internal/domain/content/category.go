package content

import "strings"

type Category struct {
	Key           string `json:"key"`
	Table         string `json:"-"`
	CounterColumn string `json:"counter_column"`
	TopicSize     int    `json:"topic_size"`
	Primary       bool   `json:"primary"`
}

var registry = []Category{
	{Key: "coding", Table: "coding_questions", CounterColumn: "coding_questions_attempted", TopicSize: 50, Primary: true},
	{Key: "technical", Table: "technical_questions", CounterColumn: "technical_questions_attempted", TopicSize: 50, Primary: true},
	{Key: "fundamental", Table: "fundamental_questions", CounterColumn: "fundamental_questions_attempted", TopicSize: 50, Primary: true},
	{Key: "algorithms", Table: "algorithms", CounterColumn: "algorithms_attempted", TopicSize: 10},
	{Key: "system_design", Table: "system_design_topics", CounterColumn: "system_design_covered", TopicSize: 10},
}

func Categories() []Category {
	out := make([]Category, len(registry))
	copy(out, registry)
	return out
}

// Lookup accepts the category key case-insensitively; "system-design" is
// accepted as an alias of "system_design".
func Lookup(key string) (Category, bool) {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
	for _, c := range registry {
		if c.Key == k {
			return c, true
		}
	}
	return Category{}, false
}

func IsCounterColumn(column string) bool {
	for _, c := range registry {
		if c.CounterColumn == column {
			return true
		}
	}
	return false
}

func CounterColumns() []string {
	out := make([]string, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.CounterColumn)
	}
	return out
}

func Tables() []string {
	out := make([]string, 0, len(registry))
	for _, c := range registry {
		out = append(out, c.Table)
	}
	return out
}
