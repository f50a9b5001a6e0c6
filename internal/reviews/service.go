package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogStore is the slice of the catalog the aggregator needs: existence
// checks and the rating fold, both inside the caller's transaction.
type CatalogStore interface {
	BookExists(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) (bool, error)
	RecordReview(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, rating int) error
}

// Service accepts reviews and folds them into the book's exact aggregate.
type Service interface {
	Submit(ctx context.Context, input SubmitInput, actor Actor) (*ReviewDTO, error)
	ListForBook(ctx context.Context, bookID uuid.UUID, page pagination.Params) ([]ReviewDTO, int64, error)
}

type service struct {
	repo    *Repository
	catalog CatalogStore
	tx      txRunner
	logg    *logger.Logger
}

// NewService builds a review service with the required dependencies.
func NewService(repo *Repository, catalog CatalogStore, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx, logg: logg}, nil
}

// Submit records a one-time rating: the review insert and the aggregate fold
// commit or roll back together.
func (s *service) Submit(ctx context.Context, input SubmitInput, actor Actor) (*ReviewDTO, error) {
	if !actor.CanActFor(input.MemberID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot review on behalf of another member")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("rating must be between 1 and 5, got %d", input.Rating))
	}

	ctx = s.logg.WithBookID(s.logg.WithMemberID(ctx, input.MemberID.String()), input.BookID.String())

	var created *models.Review
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		exists, err := s.catalog.BookExists(ctx, tx, input.BookID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check book")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}

		loans, err := txRepo.CountLoans(ctx, input.BookID, input.MemberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check loan history")
		}
		if loans == 0 {
			return pkgerrors.New(pkgerrors.CodeForbidden, "member has never borrowed this book")
		}

		if _, err := txRepo.FindByPair(ctx, input.BookID, input.MemberID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "member already reviewed this book")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior review")
		}

		review := &models.Review{
			BookID:   input.BookID,
			MemberID: input.MemberID,
			Rating:   input.Rating,
			Comment:  input.Comment,
		}
		created, err = txRepo.Create(ctx, review)
		if err != nil {
			if pkgerrors.IsUniqueViolation(err, "idx_reviews_book_member") {
				return pkgerrors.New(pkgerrors.CodeConflict, "member already reviewed this book")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}

		return s.catalog.RecordReview(ctx, tx, input.BookID, input.Rating)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(ctx, "review submitted")
	return toReviewDTO(created), nil
}

// ListForBook pages through the book's reviews, newest first.
func (s *service) ListForBook(ctx context.Context, bookID uuid.UUID, page pagination.Params) ([]ReviewDTO, int64, error) {
	exists, err := s.catalog.BookExists(ctx, nil, bookID)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check book")
	}
	if !exists {
		return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}

	rows, total, err := s.repo.ListForBook(ctx, bookID, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return toReviewDTOs(rows), total, nil
}
