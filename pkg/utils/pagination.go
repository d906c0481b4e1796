package utils

import "strconv"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PaginationParams holds limit/offset request parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginationMeta holds pagination response metadata
type PaginationMeta struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// ParsePagination reads raw query values. Unparseable values fall back to
// the defaults, limit is clamped to 1..MaxLimit and negative offsets become 0.
func ParsePagination(rawLimit, rawOffset string) PaginationParams {
	limit, err := strconv.Atoi(rawLimit)
	if err != nil {
		limit = DefaultLimit
	}
	offset, err := strconv.Atoi(rawOffset)
	if err != nil {
		offset = 0
	}
	return GetPaginationParams(limit, offset)
}

// GetPaginationParams clamps limit and offset into range
func GetPaginationParams(limit, offset int) PaginationParams {
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}

// CalculateMeta generates pagination metadata
func CalculateMeta(total int64, p PaginationParams) PaginationMeta {
	return PaginationMeta{
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: total > int64(p.Offset+p.Limit),
	}
}
