package deliveryrepo

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/delivery"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.DeliveryRepository = (*GormDeliveryRepository)(nil)

// GormDeliveryRepository implements ports.DeliveryRepository using GORM.
type GormDeliveryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDeliveryRepository creates a delivery repository bound to db.
// Added and updated deliveries are reported to tracker.
func NewGormDeliveryRepository(db *gorm.DB, tracker aggregateTracker) *GormDeliveryRepository {
	return &GormDeliveryRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts a new delivery. A second open delivery for the same posting
// is reported as errs.ObjectConflictError.
func (r *GormDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectConflictErrorWithCause("delivery", aggregate.ID().String(), err)
		}
		return fmt.Errorf("insert delivery: %w", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column, so a courier cleared by an override is stored as NULL.
func (r *GormDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DeliveryDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return fmt.Errorf("update delivery: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a delivery by ID without locking it.
func (r *GormDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a delivery and holds a row lock (SELECT ... FOR UPDATE)
// until the surrounding transaction ends.
func (r *GormDeliveryRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormDeliveryRepository) get(db *gorm.DB, id kernel.UUID) (*delivery.Delivery, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DeliveryDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery", id.String())
		}
		return nil, fmt.Errorf("select delivery: %w", err)
	}

	return toDomain(dto)
}

// FindOpenByPosting returns the non-terminal delivery of a posting, or nil
// when there is none.
func (r *GormDeliveryRepository) FindOpenByPosting(ctx context.Context, postingID kernel.UUID) (*delivery.Delivery, error) {
	if err := postingID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DeliveryDTO
	err := r.db.WithContext(ctx).
		Where("posting_id = ? AND status IN ?", postingID.Bytes(), openStatuses()).
		Order("created_at").
		Limit(1).
		Find(&dtos).Error
	if err != nil {
		return nil, fmt.Errorf("select open delivery: %w", err)
	}

	if len(dtos) == 0 {
		return nil, nil
	}
	return toDomain(dtos[0])
}

// AddRefusal inserts the refusal unless the courier already refused the
// delivery. The returned flag is false for a repeated refusal.
func (r *GormDeliveryRepository) AddRefusal(ctx context.Context, refusal delivery.Refusal) (bool, error) {
	dto := refusalFromDomain(refusal)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dto)
	if result.Error != nil {
		return false, fmt.Errorf("insert refusal: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// AddTransition appends a record to the delivery history.
func (r *GormDeliveryRepository) AddTransition(ctx context.Context, record delivery.TransitionRecord) error {
	dto := transitionFromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

func openStatuses() []int {
	open := make([]int, 0, 4)
	for _, s := range delivery.Statuses() {
		if !s.IsTerminal() {
			open = append(open, int(s))
		}
	}
	return open
}
