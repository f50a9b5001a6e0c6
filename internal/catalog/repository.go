package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the book without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// List applies the optional predicates, ordering, and page window, and
// returns the matching rows with the unpaged total.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Book, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Book{})

	filter := query.Filters
	if filter.Title != nil {
		qb = qb.Where("LOWER(title) LIKE ?", containsPattern(*filter.Title))
	}
	if filter.Genre != nil {
		qb = qb.Where("genre = ?", filter.Genre.String())
	}
	if filter.Author != nil {
		// authors is a JSON-serialized list; substring match on the
		// serialized text covers every element.
		qb = qb.Where("LOWER(authors) LIKE ?", containsPattern(*filter.Author))
	}
	if filter.Available != nil {
		if *filter.Available {
			qb = qb.Where("stock > 0")
		} else {
			qb = qb.Where("stock = 0")
		}
	}
	if filter.ISBN != nil {
		qb = qb.Where("isbn LIKE ?", "%"+strings.TrimSpace(*filter.ISBN)+"%")
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if clause := query.Order.Clause(); clause != "" {
		qb = qb.Order(clause)
	}

	page := query.Page.Normalize()
	var rows []models.Book
	if err := qb.Offset(page.Offset()).Limit(page.Limit()).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new book row.
func (r *Repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Update persists the full book row.
func (r *Repository) Update(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a book by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{}).Error
}

// BookExists reports whether the book row is present, using the caller's
// transaction when one is supplied.
func (r *Repository) BookExists(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	var count int64
	err := conn.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveLoans returns the number of open loans referencing the book.
func (r *Repository) CountActiveLoans(ctx context.Context, bookID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&count).
		Error
	return count, err
}

// AdjustStock applies a guarded stock delta inside the caller's transaction.
// The UPDATE only lands when the resulting stock stays non-negative; zero
// rows affected means either the book is gone (NOT_FOUND) or the guard
// tripped (STATE_CONFLICT).
func (r *Repository) AdjustStock(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, delta int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock + ? >= 0
	`, delta, bookID, delta)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust stock")
	}
	if res.RowsAffected == 0 {
		if _, err := r.WithTx(tx).FindByID(ctx, bookID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock recheck")
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("stock adjustment by %d would drive stock negative", delta))
	}
	return nil
}

// RecordReview folds one rating into the running aggregate inside the
// caller's transaction. The sum/count pair is the canonical rational average,
// so a single UPDATE keeps the aggregate exact regardless of submission order.
func (r *Repository) RecordReview(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, rating int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for rating aggregation")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET rating_sum = rating_sum + ?,
			review_count = review_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, rating, bookID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "record review")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	return nil
}

func containsPattern(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}
