package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"ledgergrip/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("99")).
				MarginBottom(1)

	detailSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				MarginTop(1)

	detailLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	detailKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	detailDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func field(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "  %s %s\n", detailLabelStyle.Render(fmt.Sprintf("%-9s", label+":")), value)
}

// CustomerDetails renders a customer and the invoices addressed to it
func CustomerDetails(c domain.Customer, invoices []domain.Invoice, now time.Time) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(fmt.Sprintf("%s  %s", c.Code, c.Name)))
	b.WriteString("\n")
	field(&b, "Email", c.Email)
	field(&b, "Phone", c.Phone)
	field(&b, "Company", c.Company)
	if !c.CreatedAt.IsZero() {
		field(&b, "Created", c.CreatedAt.Format(dateLayout))
	}

	open := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == domain.InvoiceStatusSent {
			open = open.Add(inv.Total())
		}
	}

	b.WriteString(detailSectionStyle.Render(fmt.Sprintf("Invoices (%d, open %s)", len(invoices), open.StringFixed(2))))
	b.WriteString("\n")
	if len(invoices) == 0 {
		b.WriteString("  none\n")
	}
	for _, inv := range invoices {
		line := fmt.Sprintf("  %-11s %-5s %12s  due %s",
			inv.Number, inv.Status, inv.Total().StringFixed(2), inv.DueAt.Format(dateLayout))
		if inv.IsOverdue(now) {
			line += "  overdue"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// InvoiceDetails renders an invoice with its lines
func InvoiceDetails(inv domain.Invoice, now time.Time) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(fmt.Sprintf("%s  %s", inv.Number, inv.CustomerName)))
	b.WriteString("\n")
	status := string(inv.Status)
	if inv.IsOverdue(now) {
		status += " (overdue)"
	}
	field(&b, "Status", status)
	field(&b, "Issued", inv.IssuedAt.Format(dateLayout))
	field(&b, "Due", inv.DueAt.Format(dateLayout))

	b.WriteString(detailSectionStyle.Render("Lines"))
	b.WriteString("\n")
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "  %-30s %6s x %10s = %12s\n",
			truncate(l.Description, 30), l.Quantity.String(), l.UnitPrice.StringFixed(2), l.Amount().StringFixed(2))
	}
	fmt.Fprintf(&b, "  %-30s %33s\n", "Total", inv.Total().StringFixed(2))

	if inv.Notes != "" {
		b.WriteString(detailSectionStyle.Render("Notes"))
		b.WriteString("\n")
		b.WriteString("  " + inv.Notes + "\n")
	}
	return b.String()
}

// HelpSection is one titled group of key bindings
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpContent renders the key bindings for the help pager
func HelpContent(sections []HelpSection) string {
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render("ledgergrip Help"))
	b.WriteString("\n")

	for _, s := range sections {
		b.WriteString(detailSectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, binding := range s.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %s  %s\n", detailKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)), detailDescStyle.Render(h.Desc))
		}
	}

	filterStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	b.WriteString("\n")
	b.WriteString(filterStyle.Render("  Search examples: acme, name:smith, status:paid"))
	b.WriteString("\n")
	return b.String()
}
