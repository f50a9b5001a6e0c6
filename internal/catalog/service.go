package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog reads and the admin book lifecycle.
type Service interface {
	GetBook(ctx context.Context, id uuid.UUID) (*BookDTO, error)
	ListBooks(ctx context.Context, query ListQuery) ([]BookDTO, int64, error)
	CreateBook(ctx context.Context, input CreateBookInput) (*BookDTO, error)
	UpdateBook(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookDTO, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// GetBook returns the book detail read model.
func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*BookDTO, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return toBookDTO(book), nil
}

// ListBooks applies the AND-composed predicates and ordering. An empty
// filter set returns the whole catalog.
func (s *service) ListBooks(ctx context.Context, query ListQuery) ([]BookDTO, int64, error) {
	if query.Filters.Genre != nil && !query.Filters.Genre.IsValid() {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid genre %q", *query.Filters.Genre))
	}
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return toBookDTOs(rows), total, nil
}

// CreateBook inserts a new title with its full stock on the shelf.
func (s *service) CreateBook(ctx context.Context, input CreateBookInput) (*BookDTO, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.Genre.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid genre %q", input.Genre))
	}
	if input.InitialStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial_stock cannot be negative")
	}
	if input.Pages < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pages cannot be negative")
	}

	book := &models.Book{
		Title:           input.Title,
		Authors:         input.Authors,
		Topic:           input.Topic,
		Genre:           input.Genre,
		PublicationDate: input.PublicationDate,
		Description:     input.Description,
		Publisher:       input.Publisher,
		ISBN:            input.ISBN,
		Pages:           input.Pages,
		Stock:           input.InitialStock,
		InitialStock:    input.InitialStock,
		ImageURLs:       input.ImageURLs,
	}
	created, err := s.repo.Create(ctx, book)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err, "idx_books_isbn") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "isbn already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
	}
	s.logg.Info(s.logg.WithBookID(ctx, created.ID.String()), "book created")
	return toBookDTO(created), nil
}

// UpdateBook applies partial metadata changes and optional restock. Stock is
// otherwise never mutated here; loan transitions own it.
func (s *service) UpdateBook(ctx context.Context, id uuid.UUID, input UpdateBookInput) (*BookDTO, error) {
	if input.Genre != nil && !input.Genre.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid genre %q", *input.Genre))
	}
	if input.AddStock != nil && *input.AddStock <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "add_stock must be positive")
	}
	if input.Pages != nil && *input.Pages < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pages cannot be negative")
	}

	var updated *models.Book
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		book, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}

		applyBookUpdate(book, input)
		if input.AddStock != nil {
			book.Stock += *input.AddStock
			book.InitialStock += *input.AddStock
		}

		updated, err = txRepo.Update(ctx, book)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toBookDTO(updated), nil
}

// DeleteBook removes the title unless copies are still out on loan.
func (s *service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}

		active, err := txRepo.CountActiveLoans(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active loans")
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("book has %d active loans", active))
		}

		if err := txRepo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
		}
		s.logg.Info(s.logg.WithBookID(ctx, id.String()), "book deleted")
		return nil
	})
}

func applyBookUpdate(book *models.Book, input UpdateBookInput) {
	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Authors != nil {
		book.Authors = *input.Authors
	}
	if input.Topic != nil {
		book.Topic = *input.Topic
	}
	if input.Genre != nil {
		book.Genre = *input.Genre
	}
	if input.PublicationDate != nil {
		book.PublicationDate = *input.PublicationDate
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.ISBN != nil {
		book.ISBN = *input.ISBN
	}
	if input.Pages != nil {
		book.Pages = *input.Pages
	}
	if input.ImageURLs != nil {
		book.ImageURLs = *input.ImageURLs
	}
}
