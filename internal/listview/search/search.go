// Package search implements the incremental, case-insensitive substring
// filter used by the list views.
package search

import (
	"strings"
)

// Field declares one searchable string field of T
type Field[T any] struct {
	Name  string
	Value func(T) string
}

// Engine filters candidate slices against a query over a fixed set of fields
type Engine[T any] struct {
	fields []Field[T]
	byName map[string]int
	scoped bool
}

// New creates an engine matching the query literally against the given
// fields. Fields without a value accessor never match.
func New[T any](fields ...Field[T]) *Engine[T] {
	e := &Engine[T]{
		fields: make([]Field[T], 0, len(fields)),
		byName: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Value == nil {
			continue
		}
		e.fields = append(e.fields, f)
		if f.Name != "" {
			e.byName[strings.ToLower(f.Name)] = len(e.fields) - 1
		}
	}
	return e
}

// NewScoped creates an engine that also understands "field:value" queries:
// when the prefix names a declared field, only that field is matched
// against value. Any other colon is part of the needle.
func NewScoped[T any](fields ...Field[T]) *Engine[T] {
	e := New(fields...)
	e.scoped = true
	return e
}

// Scoped reports whether the engine understands field-scoped queries
func (e *Engine[T]) Scoped() bool { return e.scoped }

// Fields returns the names of the searchable fields
func (e *Engine[T]) Fields() []string {
	names := make([]string, 0, len(e.fields))
	for _, f := range e.fields {
		names = append(names, f.Name)
	}
	return names
}

// Search returns the subsequence of candidates matching query, in candidate
// order. An empty or whitespace-only query returns candidates unchanged
// (the very same slice).
func (e *Engine[T]) Search(candidates []T, query string) []T {
	q := e.compile(query)
	if q.empty {
		return candidates
	}

	results := make([]T, 0, len(candidates)/4+1)
	for _, item := range candidates {
		if e.matches(item, q) {
			results = append(results, item)
		}
	}
	return results
}

// Match reports whether a single item matches query
func (e *Engine[T]) Match(item T, query string) bool {
	q := e.compile(query)
	if q.empty {
		return true
	}
	return e.matches(item, q)
}

// Highlight returns the spans of text, the value of the named field, that
// query matched. A query scoped to another field highlights nothing.
func (e *Engine[T]) Highlight(field, text, query string) [][2]int {
	q := e.compile(query)
	if q.empty {
		return nil
	}
	if q.field >= 0 && !strings.EqualFold(e.fields[q.field].Name, field) {
		return nil
	}
	return Spans(text, q.needle)
}

type compiled struct {
	needle string
	field  int // -1 for all fields
	empty  bool
}

// compile normalizes the query and, for scoped engines, resolves a
// "field:value" prefix
func (e *Engine[T]) compile(query string) compiled {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return compiled{empty: true}
	}
	if !e.scoped {
		return compiled{needle: needle, field: -1}
	}

	if prefix, rest, ok := strings.Cut(needle, ":"); ok {
		if idx, known := e.byName[strings.TrimSpace(prefix)]; known {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return compiled{empty: true}
			}
			return compiled{needle: rest, field: idx}
		}
	}
	return compiled{needle: needle, field: -1}
}

func (e *Engine[T]) matches(item T, q compiled) bool {
	if q.field >= 0 {
		return containsFold(e.fields[q.field].Value(item), q.needle)
	}
	for _, f := range e.fields {
		if containsFold(f.Value(item), q.needle) {
			return true
		}
	}
	return false
}

// containsFold reports whether the lowercase needle occurs in s, ignoring case
func containsFold(s, needle string) bool {
	// lowercasing keeps the byte length of ASCII text
	if len(s) < len(needle) && isASCII(s) {
		return false
	}
	return strings.Contains(strings.ToLower(s), needle)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Spans returns the byte ranges of text that match query case-insensitively,
// for highlighting. Ranges do not overlap and are in ascending order.
func Spans(text, query string) [][2]int {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// byte offsets would not line up with the original text
		return nil
	}

	var spans [][2]int
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, [2]int{start, start + len(needle)})
		from = start + len(needle)
	}
	return spans
}
