package catalog

import "testing"

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{4}, 4},
		{"rounds to one decimal", []int{5, 4, 4}, 4.3},
		{"rounds half up", []int{4, 5}, 4.5},
		{"all fives", []int{5, 5, 5}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AverageRating(tt.ratings); got != tt.want {
				t.Errorf("AverageRating(%v) = %v, want %v", tt.ratings, got, tt.want)
			}
		})
	}
}

func TestRatingValid(t *testing.T) {
	for r, want := range map[int]bool{0: false, 1: true, 3: true, 5: true, 6: false, -1: false} {
		if got := RatingValid(r); got != want {
			t.Errorf("RatingValid(%d) = %v, want %v", r, got, want)
		}
	}
}

func TestListOptionsNormalized(t *testing.T) {
	tests := []struct {
		name        string
		in          ListOptions
		wantPage    int
		wantPerPage int
	}{
		{"defaults", ListOptions{}, 1, 20},
		{"negative page", ListOptions{Page: -2, PerPage: 10}, 1, 10},
		{"per page capped", ListOptions{Page: 3, PerPage: 500}, 3, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.in.Normalized()
			if n.Page != tt.wantPage || n.PerPage != tt.wantPerPage {
				t.Errorf("Normalized() = page %d per %d, want page %d per %d",
					n.Page, n.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestListOptionsOffset(t *testing.T) {
	if got := (ListOptions{Page: 3, PerPage: 20}).Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
	if got := (ListOptions{}).Offset(); got != 0 {
		t.Errorf("default Offset() = %d, want 0", got)
	}
}

func TestPageTotalPages(t *testing.T) {
	tests := []struct {
		total   int64
		perPage int
		want    int64
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 0, 0},
	}
	for _, tt := range tests {
		p := Page[Book]{Total: tt.total, PerPage: tt.perPage}
		if got := p.TotalPages(); got != tt.want {
			t.Errorf("TotalPages(total=%d, per=%d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
		}
	}
}
