package enums

import "testing"

func TestParseBookGenre(t *testing.T) {
	genre, err := ParseBookGenre("science_fiction")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if genre != BookGenreScienceFiction {
		t.Fatalf("unexpected genre %s", genre)
	}

	if _, err := ParseBookGenre("space_opera"); err == nil {
		t.Fatal("expected error for unknown genre")
	}
}

func TestBookGenreIsValid(t *testing.T) {
	if !BookGenreFantasy.IsValid() {
		t.Fatal("expected fantasy to be valid")
	}
	if BookGenre("not_a_genre").IsValid() {
		t.Fatal("expected unknown genre to be invalid")
	}
}

func TestParseBookOrderEmptyMeansNone(t *testing.T) {
	order, err := ParseBookOrder("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if order != BookOrderNone {
		t.Fatalf("expected none, got %s", order)
	}
}

func TestBookOrderClause(t *testing.T) {
	tests := []struct {
		order  BookOrder
		clause string
	}{
		{BookOrderNone, ""},
		{BookOrderTitleAsc, "title ASC"},
		{BookOrderTitleDesc, "title DESC"},
		{BookOrderPagesAsc, "pages ASC"},
		{BookOrderPagesDesc, "pages DESC"},
		{BookOrderPubDateAsc, "publication_date ASC"},
		{BookOrderPubDateDesc, "publication_date DESC"},
	}
	for _, tt := range tests {
		if got := tt.order.Clause(); got != tt.clause {
			t.Fatalf("order %s expected clause %q got %q", tt.order, tt.clause, got)
		}
	}
}
