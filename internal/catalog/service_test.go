package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
)

func TestCreateBookSetsFullShelf(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	svc, err := NewService(repo, db.FromConn(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	dto, err := svc.CreateBook(ctx, CreateBookInput{
		Title:           "Salt and Stone",
		Authors:         []string{"Iris Bloom"},
		Genre:           enums.BookGenreTravel,
		PublicationDate: time.Date(2018, 4, 1, 0, 0, 0, 0, time.UTC),
		Pages:           280,
		InitialStock:    4,
	})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	if dto.Stock != 4 || dto.InitialStock != 4 {
		t.Fatalf("expected stock=initial=4, got stock=%d initial=%d", dto.Stock, dto.InitialStock)
	}
	if !dto.Available {
		t.Fatal("expected new book to be available")
	}
	if dto.AvgRating != "0.00" {
		t.Fatalf("expected zero rating, got %s", dto.AvgRating)
	}
}

func TestCreateBookValidation(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	svc, err := NewService(repo, db.FromConn(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateBookInput
	}{
		{"missing title", CreateBookInput{Genre: enums.BookGenreTravel}},
		{"invalid genre", CreateBookInput{Title: "X", Genre: "spacewestern"}},
		{"negative stock", CreateBookInput{Title: "X", Genre: enums.BookGenreTravel, InitialStock: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBook(ctx, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestUpdateBookRestock(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	svc, err := NewService(repo, db.FromConn(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)

	add := 3
	title := "Renamed"
	dto, err := svc.UpdateBook(ctx, book.ID, UpdateBookInput{Title: &title, AddStock: &add})
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if dto.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %q", dto.Title)
	}
	if dto.Stock != 5 || dto.InitialStock != 5 {
		t.Fatalf("restock should raise both counters, got stock=%d initial=%d", dto.Stock, dto.InitialStock)
	}

	bad := 0
	if _, err := svc.UpdateBook(ctx, book.ID, UpdateBookInput{AddStock: &bad}); err == nil {
		t.Fatal("expected validation error for non-positive restock")
	}

	if _, err := svc.UpdateBook(ctx, uuid.New(), UpdateBookInput{Title: &title}); err == nil {
		t.Fatal("expected not found for missing book")
	}
}

func TestDeleteBookBlockedByActiveLoans(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	svc, err := NewService(repo, db.FromConn(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	book := mustCreateTestBook(t, conn, 2)
	member := mustCreateTestMember(t, conn)
	loan := mustCreateActiveLoan(t, conn, book.ID, member.ID)

	err = svc.DeleteBook(ctx, book.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT while loan active, got %v", err)
	}

	now := time.Now().UTC()
	if err := conn.Model(loan).Update("return_date", &now).Error; err != nil {
		t.Fatalf("close loan: %v", err)
	}

	if err := svc.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("delete after return should succeed: %v", err)
	}

	var count int64
	if err := conn.Model(&models.Book{}).Where("id = ?", book.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("expected book gone")
	}
}

func TestGetBookNotFound(t *testing.T) {
	t.Parallel()
	conn := openTestDB(t)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test"})
	svc, err := NewService(repo, db.FromConn(conn), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetBook(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
