package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/listview"
	"ledgergrip/internal/listview/cache"
)

// InvoiceRepository reads and writes the invoices of one tenant
type InvoiceRepository struct {
	db     *gorm.DB
	tenant uuid.UUID
}

// NewInvoiceRepository creates a repository scoped to tenant
func NewInvoiceRepository(db *gorm.DB, tenant uuid.UUID) *InvoiceRepository {
	return &InvoiceRepository{db: db, tenant: tenant}
}

func (r *InvoiceRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&invoiceModel{}).
		Select("invoices.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("invoices.tenant_id = ?", r.tenant)
}

// Fetch returns the tenant's invoices with their lines, ordered by number
func (r *InvoiceRepository) Fetch(ctx context.Context, hints listview.Hints) ([]domain.Invoice, error) {
	query := r.query(ctx)
	if p := likePattern(hints.Query); p != "" {
		query = query.Where(`(LOWER(invoices.number) LIKE ? ESCAPE '\' OR LOWER(customers.name) LIKE ? ESCAPE '\' OR LOWER(invoices.status) LIKE ? ESCAPE '\' OR LOWER(invoices.notes) LIKE ? ESCAPE '\')`,
			p, p, p, p)
	}
	if hints.Limit > 0 {
		query = query.Limit(hints.Limit)
	}

	var rows []invoiceModel
	if err := query.Order("invoices.number ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]domain.Invoice, len(rows))
	for i, m := range rows {
		invoices[i] = m.toDomain()
	}
	return invoices, nil
}

// Get returns one invoice with its lines
func (r *InvoiceRepository) Get(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	var m invoiceModel
	if err := r.query(ctx).Where("invoices.id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Invoice{}, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		return domain.Invoice{}, err
	}
	return m.toDomain(), nil
}

// Create stores a new invoice for an existing customer and assigns its
// number
func (r *InvoiceRepository) Create(ctx context.Context, draft domain.Invoice) (domain.Invoice, error) {
	if draft.CustomerID == uuid.Nil {
		return domain.Invoice{}, fmt.Errorf("%w: invoice needs a customer", ErrInvalid)
	}

	status := draft.Status
	if status == "" {
		status = domain.InvoiceStatusDraft
	}
	issued := draft.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	due := draft.DueAt
	if due.IsZero() {
		due = issued.AddDate(0, 0, 30)
	}

	m := invoiceModel{
		ID:         uuid.New(),
		TenantID:   r.tenant,
		CustomerID: draft.CustomerID,
		Status:     string(status),
		IssuedAt:   issued,
		DueAt:      due,
		Notes:      draft.Notes,
	}
	for i, l := range draft.Lines {
		m.Lines = append(m.Lines, lineItemModel{
			ID:          uuid.New(),
			InvoiceID:   m.ID,
			Position:    i,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customers int64
		if err := tx.Model(&customerModel{}).
			Where("tenant_id = ? AND id = ?", r.tenant, draft.CustomerID).
			Count(&customers).Error; err != nil {
			return err
		}
		if customers == 0 {
			return fmt.Errorf("customer %s: %w", draft.CustomerID, ErrNotFound)
		}

		seq, err := nextSequence(tx, r.tenant, "invoice")
		if err != nil {
			return err
		}
		m.Number = formatCode("INV", seq)
		return tx.Create(&m).Error
	})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to create invoice: %w", err)
	}
	return r.Get(ctx, m.ID)
}

// Update saves status, due date and notes of inv. Lines are immutable.
func (r *InvoiceRepository) Update(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	switch inv.Status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent, domain.InvoiceStatusPaid, domain.InvoiceStatusVoid:
	default:
		return domain.Invoice{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, inv.Status)
	}

	result := r.db.WithContext(ctx).Model(&invoiceModel{}).
		Where("tenant_id = ? AND id = ?", r.tenant, inv.ID).
		Updates(map[string]any{
			"status": string(inv.Status),
			"due_at": inv.DueAt,
			"notes":  inv.Notes,
		})
	if result.Error != nil {
		return domain.Invoice{}, fmt.Errorf("failed to update invoice: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Invoice{}, fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
	}
	return r.Get(ctx, inv.ID)
}

// Delete removes an invoice and its lines
func (r *InvoiceRepository) Delete(ctx context.Context, key string) (domain.Invoice, error) {
	id, err := parseKey(key)
	if err != nil {
		return domain.Invoice{}, err
	}

	deleted, err := r.Get(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if deleted.Status == domain.InvoiceStatusPaid {
		return domain.Invoice{}, fmt.Errorf("%w: invoice %s is paid", ErrInUse, deleted.Number)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&lineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ? AND id = ?", r.tenant, id).Delete(&invoiceModel{}).Error
	})
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to delete invoice: %w", err)
	}
	return deleted, nil
}

var (
	_ listview.Source[domain.Invoice] = (*InvoiceRepository)(nil)
	_ cache.Sink[domain.Invoice]      = (*InvoiceRepository)(nil)
)
