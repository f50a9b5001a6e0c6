package loans

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository owns loan row persistence. Loans are append-then-close: rows
// are inserted on issue and closed exactly once by setting return_date.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindActive returns the open loan for the (book, member) pair, if any.
func (r *Repository) FindActive(ctx context.Context, bookID, memberID uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND member_id = ? AND return_date IS NULL", bookID, memberID).
		First(&loan).
		Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Create inserts a new loan row.
func (r *Repository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

// Close stamps return_date on the open loan row. The WHERE clause makes the
// close idempotent under races: only one writer sees a row flip.
func (r *Repository) Close(ctx context.Context, loanID uuid.UUID, returnedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE loans
		SET return_date = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND return_date IS NULL
	`, returnedAt, loanID)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "close loan")
	}
	return res.RowsAffected > 0, nil
}

// FindByID loads a loan with its book and member.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		First(&loan, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListOverdue returns open loans past due at the given moment, oldest due
// date first, with the unpaged total.
func (r *Repository) ListOverdue(ctx context.Context, now time.Time, page pagination.Params) ([]models.Loan, int64, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("return_date IS NULL AND due_date < ?", now)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := page.Normalize()
	var rows []models.Loan
	err := qb.
		Preload("Book").
		Preload("Member").
		Order("due_date ASC").
		Offset(normalized.Offset()).
		Limit(normalized.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// HistoryFor returns every loan the member has held, newest issue first.
func (r *Repository) HistoryFor(ctx context.Context, memberID uuid.UUID) ([]models.Loan, error) {
	var rows []models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("member_id = ?", memberID).
		Order("issue_date DESC").
		Find(&rows).
		Error
	return rows, err
}
