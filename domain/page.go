package domain

import (
	"strconv"
)

const PageSize = 10

// PageNumber parses a 1-based page number, anything invalid is page 1.
func PageNumber(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func Skip(page int) int64 {
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * PageSize)
}

func Pages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}
