package catalog

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/types"
	"gorm.io/gorm"
)

func mustCreateTestMember(t *testing.T, tx *gorm.DB) *models.Member {
	t.Helper()
	member := &models.Member{
		FirstName:    "Shelf",
		LastName:     "Tester",
		Email:        fmt.Sprintf("os_test_%s@example.com", uuid.NewString()),
		PhoneNumber:  fmt.Sprintf("+1555%s", uuid.NewString()[:8]),
		PasswordHash: "hash",
	}
	if err := tx.Create(member).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}

func mustCreateTestBook(t *testing.T, tx *gorm.DB, stock int) *models.Book {
	t.Helper()
	book := &models.Book{
		Title:           "Test Book",
		Authors:         types.StringList{"Ada Author"},
		Genre:           enums.BookGenreFantasy,
		PublicationDate: time.Date(2001, 6, 1, 0, 0, 0, 0, time.UTC),
		ISBN:            fmt.Sprintf("978-%s", uuid.NewString()[:10]),
		Pages:           200,
		Stock:           stock,
		InitialStock:    stock,
	}
	if err := tx.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func mustCreateActiveLoan(t *testing.T, tx *gorm.DB, bookID, memberID uuid.UUID) *models.Loan {
	t.Helper()
	now := time.Now().UTC()
	loan := &models.Loan{
		BookID:    bookID,
		MemberID:  memberID,
		IssueDate: now,
		DueDate:   now.Add(30 * 24 * time.Hour),
	}
	if err := tx.Create(loan).Error; err != nil {
		t.Fatalf("create loan: %v", err)
	}
	return loan
}
