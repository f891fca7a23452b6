package util

import "strconv"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func NewPage(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, Size: size}
}

// Calculate turns a 1-based page into an SQL offset and limit.
func (p Page) Calculate() (offset int, limit int) {
	return (p.Page - 1) * p.Size, p.Size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
