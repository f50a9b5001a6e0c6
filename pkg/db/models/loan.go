package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Loan is the borrowing record for one copy of a book. It is created when a
// copy leaves the shelf and closed exactly once by setting ReturnDate; loans
// are never deleted. A partial unique index on (book_id, member_id) where
// return_date is null backstops the one-active-loan-per-pair invariant.
type Loan struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	BookID     uuid.UUID  `gorm:"column:book_id;type:uuid;not null;index"`
	MemberID   uuid.UUID  `gorm:"column:member_id;type:uuid;not null;index"`
	IssueDate  time.Time  `gorm:"column:issue_date;not null"`
	DueDate    time.Time  `gorm:"column:due_date;not null;index"`
	ReturnDate *time.Time `gorm:"column:return_date"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Book   *Book   `gorm:"foreignKey:BookID"`
	Member *Member `gorm:"foreignKey:MemberID"`
}

func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the copy is still out.
func (l *Loan) IsActive() bool {
	return l.ReturnDate == nil
}

// IsOverdue reports whether the loan is active and past due at the given
// moment.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.ReturnDate == nil && l.DueDate.Before(now)
}
