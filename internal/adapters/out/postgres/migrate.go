package postgres

import (
	"fmt"

	"marketplace/internal/adapters/out/postgres/deliveryrepo"
	"marketplace/internal/adapters/out/postgres/invoicerepo"
	"marketplace/internal/adapters/out/postgres/outboxrepo"
	"marketplace/internal/adapters/out/postgres/postingrepo"
	"marketplace/internal/core/domain/model/delivery"

	"gorm.io/gorm"
)

// openDeliveryIndex keeps at most one non-terminal delivery per posting.
var openDeliveryIndex = fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_deliveries_one_open_per_posting
	ON deliveries (posting_id) WHERE status NOT IN (%d, %d)`, int(delivery.Completed), int(delivery.Cancelled))

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&postingrepo.PostingDTO{},
		&deliveryrepo.DeliveryDTO{},
		&deliveryrepo.TransitionDTO{},
		&deliveryrepo.RefusalDTO{},
		&outboxrepo.MessageDTO{},
		&invoicerepo.InvoiceRequestDTO{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(openDeliveryIndex).Error; err != nil {
		return fmt.Errorf("create open delivery index: %w", err)
	}
	return nil
}
