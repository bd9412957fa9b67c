package fop

import (
	"strconv"
	"strings"
)

// PageNumber is a requested page, 1-based, before it has been checked against
// the size of the result set.
type PageNumber struct {
	Number int
	Size   int
	Last   bool
}

// ParsePageNumber reads a page query value. Anything that is not a positive
// integer asks for the first page, and "last" asks for the final page.
func ParsePageNumber(page string, size int) PageNumber {
	if size <= 0 {
		size = 20
	}

	page = strings.TrimSpace(page)
	if strings.EqualFold(page, "last") {
		return PageNumber{Number: 1, Size: size, Last: true}
	}

	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		n = 1
	}

	return PageNumber{Number: n, Size: size}
}

// Page is a page clamped against a known total.
type Page struct {
	Number   int `json:"number"`
	Size     int `json:"size"`
	Total    int `json:"total"`
	NumPages int `json:"numPages"`
}

// Clamp resolves the requested page against total records. An empty result set
// still has one (empty) page, and a page past the end becomes the last page.
func (p PageNumber) Clamp(total int) Page {
	size := p.Size
	if size <= 0 {
		size = 20
	}

	numPages := 1
	if total > 0 {
		numPages = (total + size - 1) / size
	}

	number := p.Number
	switch {
	case p.Last:
		number = numPages
	case number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page{
		Number:   number,
		Size:     size,
		Total:    total,
		NumPages: numPages,
	}
}

// Offset is the number of records preceding this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the page size.
func (p Page) Limit() int {
	return p.Size
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// HasOtherPages reports whether the result set spans more than one page.
func (p Page) HasOtherPages() bool {
	return p.NumPages > 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// StartIndex is the 1-based index of the first record on the page, 0 when the
// result set is empty.
func (p Page) StartIndex() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndIndex is the 1-based index of the last record on the page.
func (p Page) EndIndex() int {
	if p.Number == p.NumPages {
		return p.Total
	}
	return p.Number * p.Size
}
