package models

import (
	"fmt"
	"strconv"
)

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page selects a window of a listing. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of rows skipped before the window starts.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns how many pages of p.Limit cover total rows.
func (p Page) TotalPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// PageError reports an unusable page or limit query parameter.
type PageError struct {
	Param string
}

func (e *PageError) Error() string {
	switch e.Param {
	case "page":
		return "Page must be a number"
	case "limit":
		return "Limit must be a number"
	}
	return fmt.Sprintf("%s must be a number", e.Param)
}

// ParsePage reads raw page/limit query values, applying defaults for empty
// ones. Non-numeric and non-positive values are rejected.
func ParsePage(rawPage, rawLimit string) (Page, error) {
	p := Page{Number: DefaultPage, Limit: DefaultLimit}
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return Page{}, &PageError{Param: "page"}
		}
		p.Number = n
	}
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 {
			return Page{}, &PageError{Param: "limit"}
		}
		p.Limit = n
	}
	return p, nil
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type PageLinks struct {
	Prev *string `json:"prev"`
	Next *string `json:"next"`
}

// Paginated is the listing envelope returned by every paginated read.
type Paginated[T any] struct {
	Data  []T       `json:"data"`
	Meta  PageMeta  `json:"meta"`
	Links PageLinks `json:"links"`
}

// NewPaginated builds the envelope. baseURL is the absolute URL of the
// listing without a query string.
func NewPaginated[T any](items []T, total int, p Page, baseURL string) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	pages := p.TotalPages(total)
	out := Paginated[T]{
		Data: items,
		Meta: PageMeta{Total: total, Page: p.Number, Limit: p.Limit, TotalPages: pages},
	}
	if p.Number > 1 {
		prev := fmt.Sprintf("%s?page=%d&limit=%d", baseURL, p.Number-1, p.Limit)
		out.Links.Prev = &prev
	}
	if p.Number < pages {
		next := fmt.Sprintf("%s?page=%d&limit=%d", baseURL, p.Number+1, p.Limit)
		out.Links.Next = &next
	}
	return out
}
