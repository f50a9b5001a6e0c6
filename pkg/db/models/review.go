package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a member's one-time rating of a book. A unique index on
// (book_id, member_id) enforces at most one review per pair; rows are
// immutable after insert.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex:idx_reviews_book_member"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;uniqueIndex:idx_reviews_book_member"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Book   *Book   `gorm:"foreignKey:BookID"`
	Member *Member `gorm:"foreignKey:MemberID"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
