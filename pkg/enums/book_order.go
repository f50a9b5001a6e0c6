package enums

import "fmt"

// BookOrder selects the ordering of catalog listings.
type BookOrder string

const (
	BookOrderNone        BookOrder = "none"
	BookOrderTitleAsc    BookOrder = "title_asc"
	BookOrderTitleDesc   BookOrder = "title_desc"
	BookOrderPagesAsc    BookOrder = "pages_asc"
	BookOrderPagesDesc   BookOrder = "pages_desc"
	BookOrderPubDateAsc  BookOrder = "publication_date_asc"
	BookOrderPubDateDesc BookOrder = "publication_date_desc"
)

var validBookOrders = []BookOrder{
	BookOrderNone,
	BookOrderTitleAsc,
	BookOrderTitleDesc,
	BookOrderPagesAsc,
	BookOrderPagesDesc,
	BookOrderPubDateAsc,
	BookOrderPubDateDesc,
}

func (o BookOrder) String() string {
	return string(o)
}

// IsValid reports whether the value is a known BookOrder.
func (o BookOrder) IsValid() bool {
	for _, candidate := range validBookOrders {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseBookOrder converts raw input into a BookOrder; empty input means no
// ordering.
func ParseBookOrder(value string) (BookOrder, error) {
	if value == "" {
		return BookOrderNone, nil
	}
	for _, candidate := range validBookOrders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book order %q", value)
}

// Clause returns the SQL order clause for the ordering, or "" for none.
func (o BookOrder) Clause() string {
	switch o {
	case BookOrderTitleAsc:
		return "title ASC"
	case BookOrderTitleDesc:
		return "title DESC"
	case BookOrderPagesAsc:
		return "pages ASC"
	case BookOrderPagesDesc:
		return "pages DESC"
	case BookOrderPubDateAsc:
		return "publication_date ASC"
	case BookOrderPubDateDesc:
		return "publication_date DESC"
	default:
		return ""
	}
}
