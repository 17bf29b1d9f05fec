package postingrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.PostingRepository = (*GormPostingRepository)(nil)

// GormPostingRepository implements ports.PostingRepository using GORM.
type GormPostingRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	now     func() time.Time
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormPostingRepository creates a posting repository bound to db.
func NewGormPostingRepository(db *gorm.DB, tracker aggregateTracker) *GormPostingRepository {
	return &GormPostingRepository{
		db:      db,
		tracker: tracker,
		now:     time.Now,
	}
}

// Add inserts a new posting.
func (r *GormPostingRepository) Add(ctx context.Context, aggregate *posting.Posting) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectConflictErrorWithCause("posting", aggregate.ID().String(), err)
		}
		return fmt.Errorf("insert posting: %w", err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a posting by ID without locking it.
func (r *GormPostingRepository) Get(ctx context.Context, id kernel.UUID) (*posting.Posting, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves a posting and holds a row lock until the
// surrounding transaction ends.
func (r *GormPostingRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*posting.Posting, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormPostingRepository) get(db *gorm.DB, id kernel.UUID) (*posting.Posting, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto PostingDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("posting", id.String())
		}
		return nil, fmt.Errorf("select posting: %w", err)
	}

	return toDomain(dto)
}

// SetStatus is a compare-and-set on the status column. Zero affected rows
// means the posting is missing or no longer in the expected status.
func (r *GormPostingRepository) SetStatus(ctx context.Context, id kernel.UUID, expected, next posting.Status) error {
	if err := errors.Join(id.Validate(), expected.Validate(), next.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&PostingDTO{}).
		Where("id = ? AND status = ?", id.Bytes(), int(expected)).
		Updates(map[string]any{
			"status":     int(next),
			"updated_at": r.now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("update posting status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectConflictErrorWithCause("posting", id.String(),
			fmt.Errorf("posting is not %s", expected))
	}
	return nil
}
