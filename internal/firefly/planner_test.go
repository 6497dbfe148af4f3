package firefly

import (
	"testing"

	"github.com/desertthunder/ffx/internal/models"
)

func TestPlan(t *testing.T) {
	filter := models.DefaultFilter()

	t.Run("partitions 303 results into four pages", func(t *testing.T) {
		pages := Plan(filter, 303)

		wantSizes := []int{100, 100, 100, 3}
		if len(pages) != len(wantSizes) {
			t.Fatalf("expected %d pages, got %d", len(wantSizes), len(pages))
		}
		for i, page := range pages {
			if page.Page != i {
				t.Errorf("page %d: expected index %d, got %d", i, i, page.Page)
			}
			if page.PageSize != wantSizes[i] {
				t.Errorf("page %d: expected size %d, got %d", i, wantSizes[i], page.PageSize)
			}
		}
	})

	t.Run("page sizes sum to the total with no gaps", func(t *testing.T) {
		tc := []struct {
			name  string
			total int
			pages int
		}{
			{name: "single result", total: 1, pages: 1},
			{name: "exactly one page", total: 100, pages: 1},
			{name: "one over a page", total: 101, pages: 2},
			{name: "two and a half pages", total: 250, pages: 3},
			{name: "exact multiple", total: 300, pages: 3},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				pages := Plan(filter, tt.total)

				if len(pages) != tt.pages {
					t.Fatalf("expected %d pages, got %d", tt.pages, len(pages))
				}

				sum := 0
				for i, page := range pages {
					if page.Page != i {
						t.Errorf("expected consecutive page index %d, got %d", i, page.Page)
					}
					if page.PageSize > maxPageSize {
						t.Errorf("page %d exceeds max size: %d", i, page.PageSize)
					}
					sum += page.PageSize
				}
				if sum != tt.total {
					t.Errorf("page sizes sum to %d, want %d", sum, tt.total)
				}
			})
		}
	})

	t.Run("non-positive totals yield an empty plan", func(t *testing.T) {
		if pages := Plan(filter, 0); pages != nil {
			t.Errorf("expected nil plan for zero total, got %d pages", len(pages))
		}
		if pages := Plan(filter, -5); pages != nil {
			t.Errorf("expected nil plan for negative total, got %d pages", len(pages))
		}
	})

	t.Run("filter criteria identical across the plan", func(t *testing.T) {
		custom := models.TaskFilter{
			Completion: models.CompletionAll,
			Read:       models.OnlyUnread,
			SortBy:     models.SortBySetDate,
			SortOrder:  models.Descending,
		}

		for _, page := range Plan(custom, 250) {
			if page.CompletionStatus != custom.Completion {
				t.Errorf("page %d: completion %q, want %q", page.Page, page.CompletionStatus, custom.Completion)
			}
			if page.ReadStatus != custom.Read {
				t.Errorf("page %d: read %q, want %q", page.Page, page.ReadStatus, custom.Read)
			}
			if len(page.SortingCriteria) != 1 || page.SortingCriteria[0].Column != custom.SortBy || page.SortingCriteria[0].Order != custom.SortOrder {
				t.Errorf("page %d: unexpected sorting criteria %+v", page.Page, page.SortingCriteria)
			}
		}
	})
}

func TestFirstPage(t *testing.T) {
	page := FirstPage(models.DefaultFilter())

	if page.Page != 0 {
		t.Errorf("expected page 0, got %d", page.Page)
	}
	if page.PageSize != maxPageSize {
		t.Errorf("expected page size %d, got %d", maxPageSize, page.PageSize)
	}
	if page.OwnerType != "OnlySetters" {
		t.Errorf("expected ownerType OnlySetters, got %q", page.OwnerType)
	}
	if page.ArchiveStatus != "All" || page.MarkingStatus != "All" {
		t.Errorf("expected archive/marking status All, got %q/%q", page.ArchiveStatus, page.MarkingStatus)
	}
}
