package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource names used as keys in the shared list cache
const (
	ResourceCustomers = "customers"
	ResourceInvoices  = "invoices"
)

// Customer represents a customer record of a tenant
type Customer struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Code      string // assigned by the store, e.g. CUS-000042
	Name      string
	Email     string
	Phone     string
	Company   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key returns the stable identity of the customer
func (c Customer) Key() string { return c.ID.String() }

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

// Next returns the status that follows s when cycling through statuses
func (s InvoiceStatus) Next() InvoiceStatus {
	switch s {
	case InvoiceStatusDraft:
		return InvoiceStatusSent
	case InvoiceStatusSent:
		return InvoiceStatusPaid
	case InvoiceStatusPaid:
		return InvoiceStatusVoid
	default:
		return InvoiceStatusDraft
	}
}

// Invoice represents a transaction billed to a customer
type Invoice struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	CustomerID   uuid.UUID
	Number       string // assigned by the store, e.g. INV-000007
	CustomerName string
	Status       InvoiceStatus
	IssuedAt     time.Time
	DueAt        time.Time
	Lines        []LineItem
	Notes        string
}

// Key returns the stable identity of the invoice
func (i Invoice) Key() string { return i.ID.String() }

// Total sums the amounts of all line items
func (i Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range i.Lines {
		total = total.Add(line.Amount())
	}
	return total
}

// IsOverdue reports whether an unpaid invoice is past its due date
func (i Invoice) IsOverdue(now time.Time) bool {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusVoid {
		return false
	}
	return !i.DueAt.IsZero() && now.After(i.DueAt)
}

// LineItem is a single billed position of an invoice
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Amount returns quantity times unit price
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}
