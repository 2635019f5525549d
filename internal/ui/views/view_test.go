package views

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/listview"
)

func plain(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}

type label string

func (l label) Key() string { return string(l) }

func TestClipCutsRowsAtViewportEdges(t *testing.T) {
	rows := []listview.Row[label]{
		{Item: "a", Index: 0, Start: 0, Size: 2},
		{Item: "b", Index: 1, Start: 2, Size: 2},
		{Item: "c", Index: 2, Start: 4, Size: 2},
	}
	render := func(row listview.Row[label]) []string {
		return []string{string(row.Item) + "1", string(row.Item) + "2"}
	}

	assert.Equal(t, []string{"a2", "b1", "b2", "c1"}, Clip(rows, 1, 4, render))
}

func TestClipPadsShortRows(t *testing.T) {
	rows := []listview.Row[label]{
		{Item: "a", Index: 0, Start: 0, Size: 3},
		{Item: "b", Index: 1, Start: 3, Size: 1},
	}
	render := func(row listview.Row[label]) []string { return []string{string(row.Item)} }

	assert.Equal(t, []string{"a", "", "", "b"}, Clip(rows, 0, 10, render))
}

func TestHighlight(t *testing.T) {
	base := lipgloss.NewStyle()
	hl := lipgloss.NewStyle().Transform(strings.ToUpper)

	assert.Equal(t, "ALIce ALIna", plain(Highlight("alice alina", [][2]int{{0, 3}, {6, 9}}, base, hl)))
	assert.Equal(t, "alice", plain(Highlight("alice", nil, base, hl)))
	// spans past the end are clipped
	assert.Equal(t, "alICE", plain(Highlight("alice", [][2]int{{2, 40}}, base, hl)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "Zo…", truncate("Zoëlle", 3))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestCustomerRow(t *testing.T) {
	r := NewRowRenderer(NewStyles())
	row := listview.Row[domain.Customer]{
		Item:     domain.Customer{Code: "CUS-000001", Name: "Alice Smith", Email: "alice@example.com", Company: "Acme"},
		Size:     1,
		Selected: true,
	}

	var asked []string
	hl := func(field, text string) [][2]int {
		asked = append(asked, field)
		return nil
	}
	lines := r.Customer(row, hl, 120)
	require.Len(t, lines, 1)
	line := plain(lines[0])
	assert.True(t, strings.HasPrefix(line, "▸ CUS-000001"))
	assert.Contains(t, line, "Alice Smith")
	assert.Contains(t, line, "alice@example.com")
	assert.Contains(t, line, "Acme")
	assert.Equal(t, []string{"code", "name", "email", "phone", "company"}, asked)

	// narrow terminals cut the row instead of wrapping
	narrow := plain(r.Customer(row, nil, 20)[0])
	assert.LessOrEqual(t, lipgloss.Width(narrow), 20)
}

func TestProvisionalRowsAreMarked(t *testing.T) {
	r := NewRowRenderer(NewStyles())
	row := listview.Row[domain.Customer]{Item: domain.Customer{Name: "Draft"}, Size: 1}

	assert.Contains(t, plain(r.Customer(row, nil, 80)[0]), "(saving)")
}

func TestInvoiceRow(t *testing.T) {
	r := NewRowRenderer(NewStyles())
	r.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	inv := domain.Invoice{
		ID:           uuid.New(),
		Number:       "INV-000042",
		CustomerName: "Alice Smith",
		Status:       domain.InvoiceStatusSent,
		IssuedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DueAt:        time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Notes:        "rush order",
		Lines: []domain.LineItem{
			{Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("9.95")},
		},
	}
	lines := r.Invoice(listview.Row[domain.Invoice]{Item: inv, Size: 2}, nil, 120)
	require.Len(t, lines, 2)

	first, second := plain(lines[0]), plain(lines[1])
	assert.Contains(t, first, "INV-000042")
	assert.Contains(t, first, "sent")
	assert.Contains(t, first, "19.90")
	assert.Contains(t, first, "overdue")
	assert.Contains(t, second, "issued 2026-01-01 · due 2026-01-31 · 1 line")
	assert.Contains(t, second, "rush order")

	inv.Status = domain.InvoiceStatusPaid
	lines = r.Invoice(listview.Row[domain.Invoice]{Item: inv, Size: 2}, nil, 120)
	assert.NotContains(t, plain(lines[0]), "overdue")
}

func TestRenderListWithIndicators(t *testing.T) {
	r := NewRenderer()
	out := plain(r.Render(ViewState{
		Width:  80,
		Height: 20,
		Tabs:   []string{"Customers", "Invoices"},
		List: ListState{
			Name:       "customers",
			Lines:      []string{"row-a", "row-b"},
			Count:      10,
			Candidates: 10,
			Above:      3,
			Below:      5,
			Scroll:     3,
			Viewport:   2,
			TotalSize:  10,
		},
	}))

	assert.Contains(t, out, "ledgergrip")
	assert.Contains(t, out, "Customers")
	assert.Contains(t, out, "↑ 3 more above ↑")
	assert.Contains(t, out, "row-a")
	assert.Contains(t, out, "↓ 5 more below ↓")
	assert.Contains(t, out, "Press ? for help")
	assert.Contains(t, out, "10 customers · 37%")
	assert.LessOrEqual(t, lipgloss.Height(out), 20)
}

func TestRenderEmptyStates(t *testing.T) {
	r := NewRenderer()
	render := func(list ListState) string {
		list.Name = "customers"
		return plain(r.Render(ViewState{Width: 100, Height: 20, List: list}))
	}

	assert.Contains(t, render(ListState{Candidates: 5, Query: "zz"}), `No customers match "zz"`)
	assert.Contains(t, render(ListState{}), "No customers yet.")
	assert.Contains(t, render(ListState{Loading: true}), "Loading customers...")
	assert.Contains(t, render(ListState{Err: errors.New("disk full")}), "Failed to load customers: disk full")
}

func TestRenderPromptsAndStatus(t *testing.T) {
	r := NewRenderer()

	out := plain(r.Render(ViewState{Width: 80, Height: 20, ConfirmTarget: "Alice Smith"}))
	assert.Contains(t, out, "Delete 'Alice Smith'? (y/n):")

	out = plain(r.Render(ViewState{Width: 80, Height: 20, Prompt: "Search: ", TextInput: "acme"}))
	assert.Contains(t, out, "Search: acme")

	out = plain(r.Render(ViewState{
		Width: 80, Height: 20,
		StatusMessage: "Failed to delete customer: in use",
		StatusKind:    domain.NotifyError,
	}))
	assert.Contains(t, out, "Failed to delete customer: in use")
	assert.NotContains(t, out, "Press ? for help")
}

func TestRenderSearchIndicator(t *testing.T) {
	r := NewRenderer()

	out := plain(r.Render(ViewState{Width: 100, Height: 20, List: ListState{Query: "acme", Pending: true}}))
	assert.Contains(t, out, "[Search: acme…]")
}

func TestRenderPopup(t *testing.T) {
	r := NewRenderer()

	out := plain(r.Render(ViewState{Width: 80, Height: 20, Popup: "INV-000001\ntotal 10.00"}))
	assert.Contains(t, out, "INV-000001")
	assert.Contains(t, out, "total 10.00")
	assert.Equal(t, 20, lipgloss.Height(out))
}

func TestPosition(t *testing.T) {
	assert.Equal(t, "10,000 customers · Top", Position(ListState{Name: "customers", Count: 10000, Candidates: 10000, Viewport: 20, TotalSize: 10000}))
	assert.Equal(t, "12 of 10,000 customers · All", Position(ListState{Name: "customers", Count: 12, Candidates: 10000, Viewport: 20, TotalSize: 12}))
	assert.Equal(t, "100 invoices · 50%", Position(ListState{Name: "invoices", Count: 100, Candidates: 100, Scroll: 90, Viewport: 20, TotalSize: 200}))
	assert.Equal(t, "100 invoices · Bot", Position(ListState{Name: "invoices", Count: 100, Candidates: 100, Scroll: 180, Viewport: 20, TotalSize: 200}))
}

func TestListHeight(t *testing.T) {
	assert.Equal(t, 15, ListHeight(24))
	assert.Equal(t, 1, ListHeight(3))
}
