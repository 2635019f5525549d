package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/listview"
	"ledgergrip/internal/listview/cache"
)

// CustomerRepository reads and writes the customers of one tenant
type CustomerRepository struct {
	db     *gorm.DB
	tenant uuid.UUID
}

// NewCustomerRepository creates a repository scoped to tenant
func NewCustomerRepository(db *gorm.DB, tenant uuid.UUID) *CustomerRepository {
	return &CustomerRepository{db: db, tenant: tenant}
}

// Fetch returns the tenant's customers ordered by code
func (r *CustomerRepository) Fetch(ctx context.Context, hints listview.Hints) ([]domain.Customer, error) {
	query := r.db.WithContext(ctx).Model(&customerModel{}).Where("tenant_id = ?", r.tenant)
	if p := likePattern(hints.Query); p != "" {
		query = query.Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(phone) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\')`,
			p, p, p, p, p)
	}
	if hints.Limit > 0 {
		query = query.Limit(hints.Limit)
	}

	var rows []customerModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers := make([]domain.Customer, len(rows))
	for i, m := range rows {
		customers[i] = m.toDomain()
	}
	return customers, nil
}

// Get returns one customer
func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	var m customerModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", r.tenant, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, fmt.Errorf("customer %s: %w", id, ErrNotFound)
		}
		return domain.Customer{}, err
	}
	return m.toDomain(), nil
}

// Create stores a new customer. The id and code of draft are ignored; the
// returned customer carries the ones assigned here.
func (r *CustomerRepository) Create(ctx context.Context, draft domain.Customer) (domain.Customer, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name is required", ErrInvalid)
	}

	m := customerModel{
		ID:       uuid.New(),
		TenantID: r.tenant,
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(draft.Email)),
		Phone:    strings.TrimSpace(draft.Phone),
		Company:  strings.TrimSpace(draft.Company),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, r.tenant, "customer")
		if err != nil {
			return err
		}
		m.Code = formatCode("CUS", seq)
		return tx.Create(&m).Error
	})
	if err != nil {
		return domain.Customer{}, fmt.Errorf("failed to create customer: %w", err)
	}
	return m.toDomain(), nil
}

// Update saves the editable fields of c
func (r *CustomerRepository) Update(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return domain.Customer{}, fmt.Errorf("%w: customer name is required", ErrInvalid)
	}

	result := r.db.WithContext(ctx).Model(&customerModel{}).
		Where("tenant_id = ? AND id = ?", r.tenant, c.ID).
		Updates(map[string]any{
			"name":    name,
			"email":   strings.ToLower(strings.TrimSpace(c.Email)),
			"phone":   strings.TrimSpace(c.Phone),
			"company": strings.TrimSpace(c.Company),
		})
	if result.Error != nil {
		return domain.Customer{}, fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.Customer{}, fmt.Errorf("customer %s: %w", c.ID, ErrNotFound)
	}
	return r.Get(ctx, c.ID)
}

// Delete removes a customer without invoices
func (r *CustomerRepository) Delete(ctx context.Context, key string) (domain.Customer, error) {
	id, err := parseKey(key)
	if err != nil {
		return domain.Customer{}, err
	}

	var deleted domain.Customer
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m customerModel
		if err := tx.Where("tenant_id = ? AND id = ?", r.tenant, id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("customer %s: %w", id, ErrNotFound)
			}
			return err
		}

		var invoices int64
		if err := tx.Model(&invoiceModel{}).Where("customer_id = ?", id).Count(&invoices).Error; err != nil {
			return err
		}
		if invoices > 0 {
			return fmt.Errorf("%w: customer %s has %d invoices", ErrInUse, m.Code, invoices)
		}

		deleted = m.toDomain()
		return tx.Delete(&m).Error
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return deleted, nil
}

var (
	_ listview.Source[domain.Customer] = (*CustomerRepository)(nil)
	_ cache.Sink[domain.Customer]      = (*CustomerRepository)(nil)
)
