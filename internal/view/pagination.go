package view

// Pagination summarizes where the current page sits in the listing
type Pagination struct {
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"hasPrev"`
	HasNext bool `json:"hasNext"`
}

// Paginate computes the 1-based page number and page count
func Paginate(skip, limit, total int) Pagination {
	p := Pagination{Skip: skip, Limit: limit, Total: total, Page: 1, Pages: 1}
	if limit <= 0 {
		return p
	}
	p.Page = skip/limit + 1
	if total > 0 {
		p.Pages = (total + limit - 1) / limit
	}
	p.HasPrev = skip > 0
	p.HasNext = skip+limit < total
	return p
}

// PrevSkip returns the offset of the previous page, never below zero
func PrevSkip(skip, limit int) int {
	return max(skip-limit, 0)
}

// NextSkip returns the offset of the next page
func NextSkip(skip, limit int) int {
	return skip + limit
}
