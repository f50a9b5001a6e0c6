package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/openshelf/openshelf-backend/pkg/db/models"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
)

// BookFilters holds the optional list predicates. Nil fields are skipped;
// set fields are AND-composed.
type BookFilters struct {
	Title     *string
	Genre     *enums.BookGenre
	Author    *string
	Available *bool
	ISBN      *string
}

// ListQuery bundles filters, ordering, and the page window.
type ListQuery struct {
	Filters BookFilters
	Order   enums.BookOrder
	Page    pagination.Params
}

// CreateBookInput carries the admin create payload.
type CreateBookInput struct {
	Title           string
	Authors         []string
	Topic           string
	Genre           enums.BookGenre
	PublicationDate time.Time
	Description     string
	Publisher       string
	ISBN            string
	Pages           int
	InitialStock    int
	ImageURLs       []string
}

// UpdateBookInput applies partial metadata updates. AddStock restocks:
// it raises stock and initial_stock together so the restock exception to
// initial_stock >= stock holds by construction.
type UpdateBookInput struct {
	Title           *string
	Authors         *[]string
	Topic           *string
	Genre           *enums.BookGenre
	PublicationDate *time.Time
	Description     *string
	Publisher       *string
	ISBN            *string
	Pages           *int
	ImageURLs       *[]string
	AddStock        *int
}

// BookDTO is the read model returned to the API layer.
type BookDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Topic           string    `json:"topic,omitempty"`
	Genre           string    `json:"genre"`
	PublicationDate time.Time `json:"publication_date"`
	Description     string    `json:"description,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	ISBN            string    `json:"isbn,omitempty"`
	Pages           int       `json:"pages"`
	Stock           int       `json:"stock"`
	InitialStock    int       `json:"initial_stock"`
	Available       bool      `json:"available"`
	AvgRating       string    `json:"avg_rating"`
	ReviewCount     int64     `json:"review_count"`
	ImageURLs       []string  `json:"image_urls,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toBookDTO(book *models.Book) *BookDTO {
	return &BookDTO{
		ID:              book.ID,
		Title:           book.Title,
		Authors:         book.Authors,
		Topic:           book.Topic,
		Genre:           book.Genre.String(),
		PublicationDate: book.PublicationDate,
		Description:     book.Description,
		Publisher:       book.Publisher,
		ISBN:            book.ISBN,
		Pages:           book.Pages,
		Stock:           book.Stock,
		InitialStock:    book.InitialStock,
		Available:       book.IsAvailable(),
		AvgRating:       book.AvgRating().StringFixed(2),
		ReviewCount:     book.ReviewCount,
		ImageURLs:       book.ImageURLs,
		CreatedAt:       book.CreatedAt,
		UpdatedAt:       book.UpdatedAt,
	}
}

func toBookDTOs(books []models.Book) []BookDTO {
	out := make([]BookDTO, 0, len(books))
	for i := range books {
		out = append(out, *toBookDTO(&books[i]))
	}
	return out
}
