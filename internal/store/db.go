// Package store persists customers and invoices in SQLite and serves them
// to the list views as sources and mutation sinks.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/logger"
)

var (
	// ErrNotFound is returned when an entity does not exist for the tenant
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when an entity fails validation
	ErrInvalid = errors.New("invalid")

	// ErrInUse is returned when deleting an entity others still refer to
	ErrInUse = errors.New("still referenced")
)

type customerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_code,priority:1"`
	Code      string    `gorm:"size:20;not null;uniqueIndex:idx_customers_tenant_code,priority:2"`
	Name      string    `gorm:"size:200;not null"`
	Email     string    `gorm:"size:200"`
	Phone     string    `gorm:"size:50"`
	Company   string    `gorm:"size:200"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (customerModel) TableName() string { return "customers" }

func (m customerModel) toDomain() domain.Customer {
	return domain.Customer{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Code:      m.Code,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Company:   m.Company,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type invoiceModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_tenant_number,priority:1"`
	CustomerID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number       string          `gorm:"size:20;not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	Status       string          `gorm:"size:20;not null;default:draft"`
	IssuedAt     time.Time       `gorm:"not null"`
	DueAt        time.Time       `gorm:"not null"`
	Notes        string          `gorm:"type:text"`
	Lines        []lineItemModel `gorm:"foreignKey:InvoiceID"`
	CustomerName string          `gorm:"->;-:migration"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

func (invoiceModel) TableName() string { return "invoices" }

func (m invoiceModel) toDomain() domain.Invoice {
	inv := domain.Invoice{
		ID:           m.ID,
		TenantID:     m.TenantID,
		CustomerID:   m.CustomerID,
		Number:       m.Number,
		CustomerName: m.CustomerName,
		Status:       domain.InvoiceStatus(m.Status),
		IssuedAt:     m.IssuedAt,
		DueAt:        m.DueAt,
		Notes:        m.Notes,
	}
	if len(m.Lines) > 0 {
		inv.Lines = make([]domain.LineItem, len(m.Lines))
		for i, l := range m.Lines {
			inv.Lines[i] = l.toDomain()
		}
	}
	return inv
}

type lineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"size:500;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

func (lineItemModel) TableName() string { return "invoice_lines" }

func (m lineItemModel) toDomain() domain.LineItem {
	return domain.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// counterModel holds the last sequence number handed out per tenant and name
type counterModel struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name     string    `gorm:"size:32;primaryKey"`
	Value    int64     `gorm:"not null"`
}

func (counterModel) TableName() string { return "counters" }

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. SQL is logged through log at the given level.
func Open(path string, log *zap.Logger, level string) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.NewGormLogger(log, logger.GormLevel(level)),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite serializes writers anyway
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&customerModel{}, &invoiceModel{}, &lineItemModel{}, &counterModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// nextSequence atomically increments and returns the named counter
func nextSequence(tx *gorm.DB, tenant uuid.UUID, name string) (int64, error) {
	seed := counterModel{TenantID: tenant, Name: name, Value: 1}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": gorm.Expr("value + 1")}),
	}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("failed to bump counter %s: %w", name, err)
	}

	var current counterModel
	if err := tx.Where("tenant_id = ? AND name = ?", tenant, name).First(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to read counter %s: %w", name, err)
	}
	return current.Value, nil
}

func formatCode(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// likePattern turns a search query into a LIKE pattern that matches a
// superset of what the in-memory search accepts. A field prefix is dropped
// and non-ASCII queries are not prefiltered, because SQLite's LOWER only
// folds ASCII.
func likePattern(query string) string {
	q := strings.TrimSpace(query)
	if i := strings.LastIndex(q, ":"); i >= 0 {
		q = strings.TrimSpace(q[i+1:])
	}
	if q == "" {
		return ""
	}
	for _, r := range q {
		if r > unicode.MaxASCII {
			return ""
		}
	}
	q = strings.ToLower(q)
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

func parseKey(key string) (uuid.UUID, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad id %q", ErrNotFound, key)
	}
	return id, nil
}
