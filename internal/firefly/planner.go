package firefly

import "github.com/desertthunder/ffx/internal/models"

// QueryPage is the wire-level filter payload for one page of the task listing
// endpoint. Field names and the constant ownerType/archiveStatus/markingStatus
// values are fixed by the portal API.
type QueryPage struct {
	OwnerType        string                  `json:"ownerType"`
	Page             int                     `json:"page"`
	PageSize         int                     `json:"pageSize"`
	ArchiveStatus    string                  `json:"archiveStatus"`
	CompletionStatus models.CompletionStatus `json:"completionStatus"`
	ReadStatus       models.ReadStatus       `json:"readStatus"`
	MarkingStatus    string                  `json:"markingStatus"`
	SortingCriteria  []SortingCriterion      `json:"sortingCriteria"`
}

// SortingCriterion is one column/order pair of the listing sort.
type SortingCriterion struct {
	Column models.SortBy    `json:"column"`
	Order  models.SortOrder `json:"order"`
}

func newQueryPage(filter models.TaskFilter, page, size int) QueryPage {
	return QueryPage{
		OwnerType:        "OnlySetters",
		Page:             page,
		PageSize:         size,
		ArchiveStatus:    "All",
		CompletionStatus: filter.Completion,
		ReadStatus:       filter.Read,
		MarkingStatus:    "All",
		SortingCriteria: []SortingCriterion{
			{Column: filter.SortBy, Order: filter.SortOrder},
		},
	}
}

// FirstPage builds page 0 of a plan before the total result count is known.
// The page size is the portal maximum; the first response's totalCount decides
// whether further pages are needed.
func FirstPage(filter models.TaskFilter) QueryPage {
	return newQueryPage(filter, 0, maxPageSize)
}

// Plan partitions a listing of totalCount tasks into consecutive pages.
//
// The returned pages' sizes sum exactly to totalCount with no gaps or
// overlaps: every page requests the portal maximum except the last, which
// requests the remainder. Sort and filter criteria are identical across the
// plan. A non-positive totalCount yields an empty plan.
func Plan(filter models.TaskFilter, totalCount int) []QueryPage {
	if totalCount <= 0 {
		return nil
	}

	count := (totalCount + maxPageSize - 1) / maxPageSize
	pages := make([]QueryPage, 0, count)
	for page := 0; page < count; page++ {
		size := totalCount - page*maxPageSize
		if size > maxPageSize {
			size = maxPageSize
		}
		pages = append(pages, newQueryPage(filter, page, size))
	}

	return pages
}
