package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository owns review persistence. Reviews are insert-only; the unique
// (book_id, member_id) index makes a second submission fail at the store.
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

// FindByPair returns the member's review of the book, if any.
func (r *Repository) FindByPair(ctx context.Context, bookID, memberID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND member_id = ?", bookID, memberID).
		First(&review).
		Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Create inserts the review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CountLoans counts every loan the member has held on the book, open or
// closed. Any loan at all makes the member eligible to review.
func (r *Repository) CountLoans(ctx context.Context, bookID, memberID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("book_id = ? AND member_id = ?", bookID, memberID).
		Count(&count).
		Error
	return count, err
}

// ListForBook pages through the book's reviews, newest first.
func (r *Repository) ListForBook(ctx context.Context, bookID uuid.UUID, page pagination.Params) ([]models.Review, int64, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("book_id = ?", bookID)

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := page.Normalize()
	var rows []models.Review
	err := qb.
		Preload("Member").
		Order("created_at DESC").
		Offset(normalized.Offset()).
		Limit(normalized.Limit()).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
