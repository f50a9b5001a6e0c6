package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Member{}, &models.Book{}, &models.Loan{}, &models.Review{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}
