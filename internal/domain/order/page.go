package order

import (
	"fmt"
	"strings"
)

// Sort directions accepted by PageRequest.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// sortColumns maps accepted sort field names to their storage columns.
// Only fields listed here may be sorted on.
var sortColumns = map[string]string{
	"id":       "id",
	"placedAt": "placed_at",
}

// InvalidPageError reports a malformed paging or sorting parameter.
type InvalidPageError struct {
	Param  string
	Reason string
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// PageRequest describes one page of a customer's order history.
// Page is zero-based.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

// Normalize applies defaults and validates the request. Size defaults to 20
// and is capped at 100; sort defaults to placedAt desc.
func (p *PageRequest) Normalize() error {
	if p.Page < 0 {
		return &InvalidPageError{Param: "page", Reason: "must not be negative"}
	}
	if p.Size == 0 {
		p.Size = 20
	}
	if p.Size < 1 || p.Size > 100 {
		return &InvalidPageError{Param: "pageSize", Reason: "must be between 1 and 100"}
	}

	if p.SortBy == "" {
		p.SortBy = "placedAt"
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		return &InvalidPageError{Param: "sortBy", Reason: fmt.Sprintf("unknown field %q", p.SortBy)}
	}

	if p.Direction == "" {
		p.Direction = SortDesc
	}
	p.Direction = strings.ToLower(p.Direction)
	if p.Direction != SortAsc && p.Direction != SortDesc {
		return &InvalidPageError{Param: "direction", Reason: `must be "asc" or "desc"`}
	}
	return nil
}

// SortColumn returns the storage column for the validated sort field.
// Normalize must have succeeded first.
func (p *PageRequest) SortColumn() string {
	return sortColumns[p.SortBy]
}

// Offset returns the row offset of the page.
func (p *PageRequest) Offset() int {
	return p.Page * p.Size
}
