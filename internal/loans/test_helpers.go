package loans

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/internal/catalog"
	"github.com/openshelf/openshelf-backend/pkg/config"
	"github.com/openshelf/openshelf-backend/pkg/db"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/metrics"
	"github.com/openshelf/openshelf-backend/pkg/types"
	"gorm.io/gorm"
)

func mustCreateTestMember(t *testing.T, tx *gorm.DB) *models.Member {
	t.Helper()
	member := &models.Member{
		FirstName:    "Ledger",
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
		Title:           "Ledger Book",
		Authors:         types.StringList{"Ada Author"},
		Genre:           enums.BookGenreHistory,
		PublicationDate: time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC),
		ISBN:            fmt.Sprintf("978-%s", uuid.NewString()[:10]),
		Pages:           180,
		Stock:           stock,
		InitialStock:    stock,
	}
	if err := tx.Create(book).Error; err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func newTestService(t *testing.T, conn *gorm.DB) *service {
	t.Helper()
	repo := NewRepository(conn)
	stock := catalog.NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "loans-test"})
	svc, err := NewService(repo, stock, db.FromConn(conn), logg, metrics.NewLoanMetrics(nil), config.LoanConfig{
		PeriodDays:      30,
		ConflictRetries: 3,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}
