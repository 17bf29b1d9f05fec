// Package postingrepo is the Posting Store. Posting rows are written here
// and nowhere else.
package postingrepo

import (
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/posting"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PostingDTO is the row of the postings table.
type PostingDTO struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status    int            `gorm:"not null;index"`
	Details   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (PostingDTO) TableName() string {
	return "postings"
}

func fromDomain(p *posting.Posting) PostingDTO {
	return PostingDTO{
		ID:        p.ID().Bytes(),
		OwnerID:   p.OwnerID().Bytes(),
		Status:    int(p.Status()),
		Details:   datatypes.JSON(p.Details()),
		CreatedAt: p.CreatedAt().UTC(),
		UpdatedAt: p.UpdatedAt().UTC(),
	}
}

func toDomain(dto PostingDTO) (*posting.Posting, error) {
	return posting.RestorePosting(
		kernel.UUIDFromGoogle(dto.ID),
		kernel.UUIDFromGoogle(dto.OwnerID),
		posting.Status(dto.Status),
		[]byte(dto.Details),
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}
