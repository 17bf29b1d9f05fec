// Package invoicerepo is the invoice trigger: it queues one invoice request
// per completed delivery for the billing side to pick up.
package invoicerepo

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRequestDTO is one requested invoice, unique per delivery.
type InvoiceRequestDTO struct {
	DeliveryID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (InvoiceRequestDTO) TableName() string {
	return "invoice_requests"
}

var _ ports.InvoiceTrigger = (*GormInvoiceTrigger)(nil)

// GormInvoiceTrigger implements ports.InvoiceTrigger by recording invoice
// requests in Postgres for the billing side to pick up.
type GormInvoiceTrigger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormInvoiceTrigger creates an invoice trigger bound to db.
func NewGormInvoiceTrigger(db *gorm.DB) *GormInvoiceTrigger {
	return &GormInvoiceTrigger{db: db, now: time.Now}
}

// RequestInvoice is insert-or-ignore on the delivery ID, so repeating it is harmless.
func (t *GormInvoiceTrigger) RequestInvoice(ctx context.Context, deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return err
	}

	dto := InvoiceRequestDTO{DeliveryID: deliveryID.Bytes(), RequestedAt: t.now().UTC()}
	err := t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto).Error
	if err != nil {
		return fmt.Errorf("insert invoice request: %w", err)
	}
	return nil
}

// Requested reports whether an invoice was requested for the delivery.
func (t *GormInvoiceTrigger) Requested(ctx context.Context, deliveryID kernel.UUID) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&InvoiceRequestDTO{}).
		Where("delivery_id = ?", deliveryID.Bytes()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count invoice requests: %w", err)
	}
	return count > 0, nil
}
