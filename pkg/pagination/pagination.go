package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Params holds pagination parameters for list requests.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: 20,
	}
}

// Query encodes the params into URL query values, omitting zero values so the
// server applies its own defaults.
func (p Params) Query() url.Values {
	v := url.Values{}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("page_size", strconv.Itoa(p.PerPage))
	}
	return v
}

// Page is the paginated list envelope the storefront API returns:
//
//	{"count": 120, "next": "...?page=3", "previous": "...?page=1", "results": [...]}
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool {
	return p.Previous != nil && *p.Previous != ""
}

// Decode parses a paginated payload. Some endpoints return a bare JSON array
// when pagination is disabled; that shape is accepted and wrapped.
func Decode[T any](data []byte) (Page[T], error) {
	var page Page[T]
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		return page, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Count: len(items), Results: items}, nil
}
