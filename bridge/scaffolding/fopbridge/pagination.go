// Package fopbridge provides support for query paging with unified response types.
package fopbridge

import (
	"encoding/json"

	"github.com/jrazmi/todos/core/scaffolding/fop"
)

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	Number       int  `json:"number"`
	Size         int  `json:"size"`
	NumPages     int  `json:"numPages"`
	Total        int  `json:"total"`
	HasPrev      bool `json:"hasPrev"`
	HasNext      bool `json:"hasNext"`
	PreviousPage *int `json:"previousPage,omitempty"`
	NextPage     *int `json:"nextPage,omitempty"`
	StartIndex   int  `json:"startIndex"`
	EndIndex     int  `json:"endIndex"`
	PageTotal    int  `json:"pageTotal"`
}

// NewPageInfo builds page info for a clamped page holding pageTotal records.
func NewPageInfo(page fop.Page, pageTotal int) PageInfo {
	info := PageInfo{
		Number:     page.Number,
		Size:       page.Size,
		NumPages:   page.NumPages,
		Total:      page.Total,
		HasPrev:    page.HasPrevious(),
		HasNext:    page.HasNext(),
		StartIndex: page.StartIndex(),
		EndIndex:   page.EndIndex(),
		PageTotal:  pageTotal,
	}

	if info.HasPrev {
		prev := page.PreviousNumber()
		info.PreviousPage = &prev
	}
	if info.HasNext {
		next := page.NextNumber()
		info.NextPage = &next
	}

	return info
}

// PaginatedResponse is a page of records with its page info.
type PaginatedResponse[T any] struct {
	Records  []T      `json:"records"`
	PageInfo PageInfo `json:"pageInfo"`
}

// NewPaginatedResponse creates a paginated response. A nil slice encodes as an
// empty array.
func NewPaginatedResponse[T any](records []T, page fop.Page) PaginatedResponse[T] {
	if records == nil {
		records = []T{}
	}
	return PaginatedResponse[T]{
		Records:  records,
		PageInfo: NewPageInfo(page, len(records)),
	}
}

// Encode implements the encoder interface for the paginated response
func (p PaginatedResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(p)
	return data, "application/json", err
}

// NonPaginatedRecords wraps records that were not paged.
type NonPaginatedRecords[T any] struct {
	Records []T `json:"records"`
}

func NewNonPaginatedRecords[T any](records []T) NonPaginatedRecords[T] {
	if records == nil {
		records = []T{}
	}
	return NonPaginatedRecords[T]{Records: records}
}

func (n NonPaginatedRecords[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(n)
	return data, "application/json", err
}
