package services

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func sanitizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func sanitizeLimit(limit, fallback, maximum int) int {
	if limit < 1 {
		return fallback
	}
	if limit > maximum {
		return maximum
	}
	return limit
}

func buildPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
