package store

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledgergrip/internal/domain"
)

// SeedOptions controls how much fake data Seed generates
type SeedOptions struct {
	Customers int
	Invoices  int
	Seed      uint64 // 0 picks a random seed
}

// SeedResult reports what Seed created
type SeedResult struct {
	Customers int
	Invoices  int
}

var statuses = []string{
	string(domain.InvoiceStatusDraft),
	string(domain.InvoiceStatusSent),
	string(domain.InvoiceStatusSent),
	string(domain.InvoiceStatusPaid),
	string(domain.InvoiceStatusPaid),
	string(domain.InvoiceStatusVoid),
}

// Seed fills the tenant with fake customers and invoices
func Seed(ctx context.Context, db *gorm.DB, tenant uuid.UUID, opts SeedOptions) (SeedResult, error) {
	faker := gofakeit.New(opts.Seed)
	customers := NewCustomerRepository(db, tenant)
	invoices := NewInvoiceRepository(db, tenant)

	var result SeedResult
	ids := make([]uuid.UUID, 0, opts.Customers)
	for range opts.Customers {
		c, err := customers.Create(ctx, FakeCustomer(faker))
		if err != nil {
			return result, fmt.Errorf("seed customer %d: %w", result.Customers+1, err)
		}
		ids = append(ids, c.ID)
		result.Customers++
	}
	if len(ids) == 0 {
		return result, nil
	}

	for range opts.Invoices {
		draft := FakeInvoice(faker, ids[faker.Number(0, len(ids)-1)])
		if _, err := invoices.Create(ctx, draft); err != nil {
			return result, fmt.Errorf("seed invoice %d: %w", result.Invoices+1, err)
		}
		result.Invoices++
	}
	return result, nil
}

// FakeCustomer generates a customer draft
func FakeCustomer(faker *gofakeit.Faker) domain.Customer {
	return domain.Customer{
		ID:      uuid.New(),
		Name:    faker.Name(),
		Email:   faker.Email(),
		Phone:   faker.Phone(),
		Company: faker.Company(),
	}
}

// FakeInvoice generates an invoice draft for customer
func FakeInvoice(faker *gofakeit.Faker, customer uuid.UUID) domain.Invoice {
	issued := faker.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
	inv := domain.Invoice{
		ID:         uuid.New(),
		CustomerID: customer,
		Status:     domain.InvoiceStatus(faker.RandomString(statuses)),
		IssuedAt:   issued,
		DueAt:      issued.AddDate(0, 0, faker.Number(14, 60)),
	}
	if faker.Number(0, 3) == 0 {
		inv.Notes = faker.Sentence(6)
	}
	for range faker.Number(1, 4) {
		inv.Lines = append(inv.Lines, domain.LineItem{
			ID:          uuid.New(),
			Description: faker.ProductName(),
			Quantity:    decimal.NewFromInt(int64(faker.Number(1, 10))),
			UnitPrice:   decimal.NewFromFloat(faker.Price(5, 500)).Round(2),
		})
	}
	return inv
}

// SeedMemory fills memory stores with fake customers and invoices. Entities
// created later get codes continuing the seeded sequence.
func SeedMemory(tenant uuid.UUID, opts SeedOptions) (*MemoryStore[domain.Customer], *MemoryStore[domain.Invoice]) {
	faker := gofakeit.New(opts.Seed)
	now := time.Now()

	customers := make([]domain.Customer, 0, opts.Customers)
	for i := range opts.Customers {
		c := FakeCustomer(faker)
		c.TenantID = tenant
		c.Code = formatCode("CUS", int64(i+1))
		c.CreatedAt, c.UpdatedAt = now, now
		customers = append(customers, c)
	}

	var invoices []domain.Invoice
	if len(customers) > 0 {
		invoices = make([]domain.Invoice, 0, opts.Invoices)
		for i := range opts.Invoices {
			c := customers[faker.Number(0, len(customers)-1)]
			inv := FakeInvoice(faker, c.ID)
			inv.TenantID = tenant
			inv.Number = formatCode("INV", int64(i+1))
			inv.CustomerName = c.Name
			for j := range inv.Lines {
				inv.Lines[j].InvoiceID = inv.ID
			}
			invoices = append(invoices, inv)
		}
	}

	customerStore := NewMemoryStore(customers, WithAssign(func(d domain.Customer, seq int) domain.Customer {
		d.ID = uuid.New()
		d.TenantID = tenant
		d.Code = formatCode("CUS", int64(len(customers)+seq))
		d.CreatedAt = time.Now()
		d.UpdatedAt = d.CreatedAt
		return d
	}))
	invoiceStore := NewMemoryStore(invoices, WithAssign(func(d domain.Invoice, seq int) domain.Invoice {
		d.ID = uuid.New()
		d.TenantID = tenant
		d.Number = formatCode("INV", int64(len(invoices)+seq))
		if d.Status == "" {
			d.Status = domain.InvoiceStatusDraft
		}
		return d
	}))
	return customerStore, invoiceStore
}
