package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openshelf/openshelf-backend/api/responses"
	"github.com/openshelf/openshelf-backend/api/validators"
	"github.com/openshelf/openshelf-backend/internal/catalog"
	"github.com/openshelf/openshelf-backend/pkg/enums"
	pkgerrors "github.com/openshelf/openshelf-backend/pkg/errors"
	"github.com/openshelf/openshelf-backend/pkg/logger"
	"github.com/openshelf/openshelf-backend/pkg/pagination"
)

// CreateBookRequest is the admin payload for adding a shelf.
type CreateBookRequest struct {
	Title           string   `json:"title" validate:"required"`
	Authors         []string `json:"authors"`
	Topic           string   `json:"topic"`
	Genre           string   `json:"genre" validate:"required"`
	PublicationDate string   `json:"publication_date" validate:"required"`
	Description     string   `json:"description"`
	Publisher       string   `json:"publisher"`
	ISBN            string   `json:"isbn"`
	Pages           int      `json:"pages" validate:"min=0"`
	InitialStock    int      `json:"initial_stock" validate:"min=0"`
	ImageURLs       []string `json:"image_urls"`
}

// UpdateBookRequest carries partial metadata changes; add_stock restocks.
type UpdateBookRequest struct {
	Title           *string   `json:"title,omitempty"`
	Authors         *[]string `json:"authors,omitempty"`
	Topic           *string   `json:"topic,omitempty"`
	Genre           *string   `json:"genre,omitempty"`
	PublicationDate *string   `json:"publication_date,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Publisher       *string   `json:"publisher,omitempty"`
	ISBN            *string   `json:"isbn,omitempty"`
	Pages           *int      `json:"pages,omitempty" validate:"omitempty,min=0"`
	ImageURLs       *[]string `json:"image_urls,omitempty"`
	AddStock        *int      `json:"add_stock,omitempty" validate:"omitempty,min=1"`
}

const publicationDateLayout = "2006-01-02"

// BookList pages through the catalog with the query-string predicates.
func BookList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseBookListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		books, total, err := svc.ListBooks(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, books, pagination.NewEnvelope(query.Page, total))
	}
}

func BookDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		book, err := svc.GetBook(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BookCreate adds a new shelf to the catalog. Admin only.
func BookCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.CreateBook(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// BookUpdate applies partial changes to a shelf. Admin only.
func BookUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body UpdateBookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		book, err := svc.UpdateBook(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BookDelete removes a shelf with no active loans. Admin only.
func BookDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(chi.URLParam(r, "bookId"), "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteBook(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseBookListQuery(r *http.Request) (catalog.ListQuery, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return catalog.ListQuery{}, err
	}

	filters := catalog.BookFilters{
		Title:  validators.ParseQueryString(r, "title"),
		Author: validators.ParseQueryString(r, "author"),
		ISBN:   validators.ParseQueryString(r, "isbn"),
	}
	if raw := validators.ParseQueryString(r, "genre"); raw != nil {
		genre, err := enums.ParseBookGenre(*raw)
		if err != nil {
			return catalog.ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid genre").
				WithDetails(map[string]any{"field": "genre"})
		}
		filters.Genre = &genre
	}
	available, err := validators.ParseQueryBool(r, "available")
	if err != nil {
		return catalog.ListQuery{}, err
	}
	filters.Available = available

	order := enums.BookOrderNone
	if raw := validators.ParseQueryString(r, "order"); raw != nil {
		order, err = enums.ParseBookOrder(*raw)
		if err != nil {
			return catalog.ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid order").
				WithDetails(map[string]any{"field": "order"})
		}
	}

	return catalog.ListQuery{Filters: filters, Order: order, Page: page}, nil
}

func (b CreateBookRequest) toInput() (catalog.CreateBookInput, error) {
	genre, err := enums.ParseBookGenre(b.Genre)
	if err != nil {
		return catalog.CreateBookInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid genre").
			WithDetails(map[string]any{"field": "genre"})
	}
	published, err := time.Parse(publicationDateLayout, b.PublicationDate)
	if err != nil {
		return catalog.CreateBookInput{}, pkgerrors.New(pkgerrors.CodeValidation, "publication_date must be YYYY-MM-DD").
			WithDetails(map[string]any{"field": "publication_date"})
	}
	return catalog.CreateBookInput{
		Title:           b.Title,
		Authors:         b.Authors,
		Topic:           b.Topic,
		Genre:           genre,
		PublicationDate: published,
		Description:     b.Description,
		Publisher:       b.Publisher,
		ISBN:            b.ISBN,
		Pages:           b.Pages,
		InitialStock:    b.InitialStock,
		ImageURLs:       b.ImageURLs,
	}, nil
}

func (b UpdateBookRequest) toInput() (catalog.UpdateBookInput, error) {
	input := catalog.UpdateBookInput{
		Title:       b.Title,
		Authors:     b.Authors,
		Topic:       b.Topic,
		Description: b.Description,
		Publisher:   b.Publisher,
		ISBN:        b.ISBN,
		Pages:       b.Pages,
		ImageURLs:   b.ImageURLs,
		AddStock:    b.AddStock,
	}
	if b.Genre != nil {
		genre, err := enums.ParseBookGenre(*b.Genre)
		if err != nil {
			return catalog.UpdateBookInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid genre").
				WithDetails(map[string]any{"field": "genre"})
		}
		input.Genre = &genre
	}
	if b.PublicationDate != nil {
		published, err := time.Parse(publicationDateLayout, *b.PublicationDate)
		if err != nil {
			return catalog.UpdateBookInput{}, pkgerrors.New(pkgerrors.CodeValidation, "publication_date must be YYYY-MM-DD").
				WithDetails(map[string]any{"field": "publication_date"})
		}
		input.PublicationDate = &published
	}
	return input, nil
}
