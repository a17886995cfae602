package dto

// ListParams defines the pagination query parameters shared by every listing.
type ListParams struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListResponse wraps one page of results. NextToken is empty on the last page.
type ListResponse[T any] struct {
	Items     []T    `json:"items"`
	NextToken string `json:"nextToken,omitempty"`
}

// NewListResponse builds a page, never returning a nil item list.
func NewListResponse[T any](items []T, nextToken string) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, NextToken: nextToken}
}

// PeriodParams selects an inclusive range of calendar days (YYYY-MM-DD) in the
// establishment's timezone.
type PeriodParams struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
