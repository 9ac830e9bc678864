package listutil

import (
	"net/url"
	"slices"
	"testing"
)

// TestParsePageParams_Defaults verifies default page params when no query values provided.
func TestParsePageParams_Defaults(t *testing.T) {
	p := ParsePageParams(url.Values{})
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected per_page %d, got %d", DefaultPerPage, p.PerPage)
	}
}

// TestParsePageParams_Valid verifies correct parsing of valid page and per_page values.
func TestParsePageParams_Valid(t *testing.T) {
	p := ParsePageParams(url.Values{"page": {"3"}, "per_page": {"50"}})
	if p.Page != 3 || p.PerPage != 50 {
		t.Errorf("got %+v, want page 3 per_page 50", p)
	}
}

// TestParsePageParams_Invalid verifies fallbacks for out-of-range values.
func TestParsePageParams_Invalid(t *testing.T) {
	p := ParsePageParams(url.Values{"page": {"-1"}, "per_page": {"25"}})
	if p.Page != 1 {
		t.Errorf("expected page 1 for negative input, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page for 25, got %d", p.PerPage)
	}
}

// TestParseSortParams verifies column allow-listing and direction defaults.
func TestParseSortParams(t *testing.T) {
	s := ParseSortParams(url.Values{"sort": {"name"}, "dir": {"desc"}}, []string{"name", "email"})
	if s.Sort != "name" || !s.Desc() {
		t.Errorf("got %+v", s)
	}
	s = ParseSortParams(url.Values{"sort": {"password"}, "dir": {"DROP TABLE"}}, []string{"name"})
	if s.Sort != "" || s.Dir != "asc" {
		t.Errorf("got %+v, want empty sort asc", s)
	}
}

// TestParseFilterParams verifies search and filter extraction from query values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {" aroha "}, "team": {"team-1"}, "unknown": {"x"}}
	f := ParseFilterParams(q, []string{"team", "skill"})
	if f.Search != "aroha" {
		t.Errorf("expected trimmed search, got %q", f.Search)
	}
	if f.Filters["team"] != "team-1" {
		t.Errorf("expected team=team-1, got %s", f.Filters["team"])
	}
	if _, ok := f.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown'")
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantStart  int
		wantEnd    int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 1, 20, 0},
		{"page2", 2, 20, 85, 5, 2, 21, 40, 20},
		{"lastPage", 5, 20, 85, 5, 5, 81, 85, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 81, 85, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0, 0, 0},
		{"exactFit", 1, 10, 10, 1, 1, 1, 10, 0},
		{"singleRow", 1, 20, 1, 1, 1, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.StartRow() != tt.wantStart {
				t.Errorf("StartRow: got %d, want %d", pi.StartRow(), tt.wantStart)
			}
			if pi.EndRow() != tt.wantEnd {
				t.Errorf("EndRow: got %d, want %d", pi.EndRow(), tt.wantEnd)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

// TestPaginate verifies slicing of in-memory rows.
func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, info := Paginate(items, PageParams{Page: 2, PerPage: 2})
	if !slices.Equal(page, []int{3, 4}) || info.TotalPages != 3 {
		t.Errorf("page 2: got %v %+v", page, info)
	}
	page, info = Paginate(items, PageParams{Page: 9, PerPage: 2})
	if !slices.Equal(page, []int{5}) || info.Page != 3 {
		t.Errorf("clamped page: got %v %+v", page, info)
	}
	page, info = Paginate([]int(nil), PageParams{Page: 1, PerPage: 10})
	if page == nil || len(page) != 0 || info.Total != 0 {
		t.Errorf("empty: got %v %+v", page, info)
	}
}
