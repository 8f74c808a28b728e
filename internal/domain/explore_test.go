package domain

import "testing"

func TestPageStateTotalPages(t *testing.T) {
	cases := []struct {
		total, perPage, wantPages int
	}{
		{0, 25, 1},
		{1, 25, 1},
		{25, 25, 1},
		{26, 25, 2},
		{60, 25, 3},
		{-5, 25, 1},
	}
	for _, tc := range cases {
		p := NewPageState(tc.perPage).WithTotal(tc.total)
		if p.TotalPages != tc.wantPages {
			t.Fatalf("total %d / perPage %d: expected %d pages, got %d",
				tc.total, tc.perPage, tc.wantPages, p.TotalPages)
		}
	}
}

func TestPageStateClampsPage(t *testing.T) {
	p := NewPageState(25).WithTotal(60)

	if got := p.WithPage(99).Page; got != 3 {
		t.Fatalf("expected clamp to last page 3, got %d", got)
	}
	if got := p.WithPage(0).Page; got != 1 {
		t.Fatalf("expected clamp to first page, got %d", got)
	}
	if got := p.WithPage(-7).Page; got != 1 {
		t.Fatalf("expected clamp to first page, got %d", got)
	}
}

func TestPageStateShrinkingTotalClampsPage(t *testing.T) {
	p := NewPageState(25).WithTotal(100).WithPage(4)
	p = p.WithTotal(30)
	if p.TotalPages != 2 {
		t.Fatalf("expected 2 pages after shrink, got %d", p.TotalPages)
	}
	if p.Page != 2 {
		t.Fatalf("expected page clamped to 2, got %d", p.Page)
	}
}

func TestPageStateWithPerPageResets(t *testing.T) {
	p := NewPageState(25).WithTotal(100).WithPage(3)
	p = p.WithPerPage(50)
	if p.Page != 1 {
		t.Fatalf("page size change must reset to page 1, got %d", p.Page)
	}
	if p.TotalPages != 2 {
		t.Fatalf("expected 2 pages at 50 per page, got %d", p.TotalPages)
	}
	if got := NewPageState(25).WithPerPage(0).PerPage; got != DefaultPerPage {
		t.Fatalf("invalid page size must fall back to default, got %d", got)
	}
}

func TestPageStateHasMore(t *testing.T) {
	p := NewPageState(25).WithTotal(60)
	if !p.HasMore() {
		t.Fatalf("page 1 of 3 has more")
	}
	if p.WithPage(3).HasMore() {
		t.Fatalf("last page has no more")
	}
}

func TestNormalizeFilter(t *testing.T) {
	if NormalizeFilter("verified") != FilterVerified {
		t.Fatalf("verified must normalize")
	}
	if NormalizeFilter("bogus") != FilterAll {
		t.Fatalf("unknown filter must fall back to all")
	}
	if NormalizeFilter("") != FilterAll {
		t.Fatalf("empty filter must fall back to all")
	}
}

func TestNormalizeCategory(t *testing.T) {
	for _, cat := range AllCategories() {
		if got, ok := NormalizeCategory(string(cat)); !ok || got != cat {
			t.Fatalf("category %q must normalize to itself", cat)
		}
	}
	if _, ok := NormalizeCategory("bogus"); ok {
		t.Fatalf("unknown category must be rejected")
	}
}
