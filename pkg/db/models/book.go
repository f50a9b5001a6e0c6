package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/types"
)

// Book represents a catalog entry: one lendable title with a shared stock
// counter and a running rating aggregate.
type Book struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Title           string           `gorm:"column:title;not null;index"`
	Authors         types.StringList `gorm:"column:authors;type:text;not null"`
	Topic           string           `gorm:"column:topic"`
	Genre           enums.BookGenre  `gorm:"column:genre;type:text;not null;index"`
	PublicationDate time.Time        `gorm:"column:publication_date;not null"`
	Description     string           `gorm:"column:description"`
	Publisher       string           `gorm:"column:publisher"`
	ISBN            string           `gorm:"column:isbn;not null;index"`
	Pages           int              `gorm:"column:pages;not null"`
	Stock           int              `gorm:"column:stock;not null;default:0"`
	InitialStock    int              `gorm:"column:initial_stock;not null;default:0"`
	RatingSum       int64            `gorm:"column:rating_sum;not null;default:0"`
	ReviewCount     int64            `gorm:"column:review_count;not null;default:0"`
	ImageURLs       types.StringList `gorm:"column:image_urls;type:text"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so inserts behave the same on
// Postgres and the SQLite test databases.
func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether at least one copy is on the shelf.
func (b *Book) IsAvailable() bool {
	return b.Stock > 0
}

// AvgRating derives the exact mean rating from the persisted integer
// aggregates. The sum/count pair is the canonical rational value; converting
// to a decimal happens only here, at the read edge.
func (b *Book) AvgRating() decimal.Decimal {
	if b.ReviewCount == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(b.RatingSum).Div(decimal.NewFromInt(b.ReviewCount))
}
