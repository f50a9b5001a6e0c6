package loans

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
)

// Actor identifies who is performing a lending operation. Members act on
// their own loans; admins act on anyone's.
type Actor struct {
	MemberID uuid.UUID
	Role     enums.MemberRole
}

// CanActFor reports whether the actor may operate on the given member's loans.
func (a Actor) CanActFor(memberID uuid.UUID) bool {
	return a.MemberID == memberID || a.Role.IsAdmin()
}

// LoanDTO is the read model for a single borrowing record.
type LoanDTO struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	BookTitle  string     `json:"book_title,omitempty"`
	MemberID   uuid.UUID  `json:"member_id"`
	MemberName string     `json:"member_name,omitempty"`
	IssueDate  time.Time  `json:"issue_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Overdue    bool       `json:"overdue"`
}

// HistoryDTO splits a member's ledger into open and closed loans, both
// ordered by issue date descending.
type HistoryDTO struct {
	Active   []LoanDTO `json:"active"`
	Returned []LoanDTO `json:"returned"`
}

func toLoanDTO(loan *models.Loan, now time.Time) LoanDTO {
	dto := LoanDTO{
		ID:         loan.ID,
		BookID:     loan.BookID,
		MemberID:   loan.MemberID,
		IssueDate:  loan.IssueDate,
		DueDate:    loan.DueDate,
		ReturnDate: loan.ReturnDate,
		Overdue:    loan.IsOverdue(now),
	}
	if loan.Book != nil {
		dto.BookTitle = loan.Book.Title
	}
	if loan.Member != nil {
		dto.MemberName = loan.Member.FullName()
	}
	return dto
}

func toLoanDTOs(rows []models.Loan, now time.Time) []LoanDTO {
	out := make([]LoanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toLoanDTO(&rows[i], now))
	}
	return out
}
