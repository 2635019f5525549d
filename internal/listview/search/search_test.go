package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	id    int
	name  string
	email string
}

var personFields = []Field[person]{
	{Name: "name", Value: func(p person) string { return p.name }},
	{Name: "email", Value: func(p person) string { return p.email }},
}

func personEngine() *Engine[person] {
	return New(personFields...)
}

func ids(ps []person) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.id)
	}
	return out
}

func TestSearchKeepsCandidateOrder(t *testing.T) {
	candidates := []person{
		{id: 1, name: "Alice"},
		{id: 2, name: "bob"},
		{id: 3, name: "Alicia"},
	}

	got := personEngine().Search(candidates, "ali")
	assert.Equal(t, []int{1, 3}, ids(got))
}

func TestSearchMatchesAnyField(t *testing.T) {
	candidates := []person{
		{id: 1, name: "Alice", email: "a@acme.io"},
		{id: 2, name: "Bob", email: "bob@ACME.io"},
		{id: 3, name: "Carol", email: "carol@example.com"},
	}

	got := personEngine().Search(candidates, "  Acme ")
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestEmptyQueryReturnsSameSlice(t *testing.T) {
	candidates := []person{{id: 1, name: "x"}, {id: 2, name: "y"}}
	e := personEngine()

	for _, q := range []string{"", "   ", "\t\n"} {
		got := e.Search(candidates, q)
		require.Len(t, got, len(candidates))
		assert.Same(t, &candidates[0], &got[0], "query %q must not copy", q)
	}
}

func TestSearchNoMatchesIsEmpty(t *testing.T) {
	got := personEngine().Search([]person{{id: 1, name: "Alice"}}, "zed")
	assert.Empty(t, got)
}

func TestMissingFieldValuesAreEmpty(t *testing.T) {
	e := New(
		Field[person]{Name: "name", Value: func(p person) string { return p.name }},
		Field[person]{Name: "broken"},
	)
	candidates := []person{{id: 1}, {id: 2, name: "n"}}

	assert.Equal(t, []int{2}, ids(e.Search(candidates, "n")))
	assert.Equal(t, []string{"name"}, e.Fields())
}

func TestColonIsLiteralByDefault(t *testing.T) {
	candidates := []person{
		{id: 1, name: "Alice", email: "see name:bob"},
		{id: 2, name: "Bob"},
		{id: 3, name: "Carol"},
	}
	e := personEngine()
	require.False(t, e.Scoped())

	assert.Equal(t, []int{1}, ids(e.Search(candidates, "name:bob")))
	assert.Equal(t, []int{1}, ids(e.Search(candidates, " NAME: ")))
	assert.Equal(t, [][2]int{{4, 12}}, e.Highlight("email", "see name:bob", "name:bob"))
	assert.Nil(t, e.Highlight("name", "Bob", "name:bob"))
}

func TestFieldScopedQuery(t *testing.T) {
	candidates := []person{
		{id: 1, name: "Mail Order Ltd", email: "info@order.io"},
		{id: 2, name: "Bob", email: "mail@bob.io"},
	}
	e := NewScoped(personFields...)
	require.True(t, e.Scoped())

	assert.Equal(t, []int{2}, ids(e.Search(candidates, "email:mail")))
	assert.Equal(t, []int{1}, ids(e.Search(candidates, "NAME: mail")))
	// unknown prefixes are part of the needle
	assert.Empty(t, e.Search(candidates, "phone:mail"))
	// a bare field prefix behaves like an empty query
	assert.Len(t, e.Search(candidates, "email:"), 2)
}

func TestMatch(t *testing.T) {
	e := personEngine()
	p := person{id: 1, name: "Zoë", email: "zoe@example.com"}

	assert.True(t, e.Match(p, "ZOË"))
	assert.True(t, e.Match(p, ""))
	assert.False(t, e.Match(p, "bob"))
}

func TestSpans(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 3}, {7, 10}}, Spans("Alice, alina", "ali"))
	assert.Nil(t, Spans("Alice", ""))
	assert.Nil(t, Spans("", "a"))
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}}, Spans("aaaa", "aa"))
}

func TestHighlight(t *testing.T) {
	e := NewScoped(personFields...)

	assert.Equal(t, [][2]int{{0, 3}}, e.Highlight("name", "Bobby", "bob"))
	assert.Equal(t, [][2]int{{0, 3}}, e.Highlight("name", "Bobby", "name:bob"))
	// scoped to email, so the name is not highlighted
	assert.Nil(t, e.Highlight("name", "Bobby", "email:bob"))
	assert.Nil(t, e.Highlight("name", "Bobby", "  "))
}

func TestSearchLargeCollectionIsFast(t *testing.T) {
	candidates := make([]person, 2000)
	for i := range candidates {
		candidates[i] = person{
			id:    i,
			name:  fmt.Sprintf("Customer %05d", i),
			email: fmt.Sprintf("customer%05d@example.com", i),
		}
	}
	e := personEngine()

	start := time.Now()
	got := e.Search(candidates, "00042")
	elapsed := time.Since(start)

	assert.Equal(t, []int{42}, ids(got))
	// generous bound so slow CI machines do not flake
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func BenchmarkSearch2000(b *testing.B) {
	candidates := make([]person, 2000)
	for i := range candidates {
		candidates[i] = person{id: i, name: fmt.Sprintf("Customer %05d", i), email: "x@example.com"}
	}
	e := personEngine()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Search(candidates, "stomer 01")
	}
}
