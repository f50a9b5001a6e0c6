package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	n := Params{}.Normalize()
	if n.Page != 1 {
		t.Fatalf("expected page 1, got %d", n.Page)
	}
	if n.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size, got %d", n.PageSize)
	}
}

func TestNormalizeCapsPageSize(t *testing.T) {
	n := Params{Page: 2, PageSize: 5000}.Normalize()
	if n.PageSize != MaxPageSize {
		t.Fatalf("expected capped page size %d, got %d", MaxPageSize, n.PageSize)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
}

func TestNewEnvelopeCeilsTotalPages(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		pages    int64
	}{
		{total: 0, pageSize: 10, pages: 0},
		{total: 1, pageSize: 10, pages: 1},
		{total: 10, pageSize: 10, pages: 1},
		{total: 11, pageSize: 10, pages: 2},
		{total: 100, pageSize: 25, pages: 4},
	}
	for _, tt := range tests {
		env := NewEnvelope(Params{Page: 1, PageSize: tt.pageSize}, tt.total)
		if env.TotalPages != tt.pages {
			t.Fatalf("total %d size %d: expected %d pages, got %d", tt.total, tt.pageSize, tt.pages, env.TotalPages)
		}
	}
}
