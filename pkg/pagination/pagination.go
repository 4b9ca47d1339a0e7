// Package pagination builds opaque offset/limit page tokens and navigation
// links for list responses.
package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Cursor struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Links carries navigation tokens for a paged collection. First and Last are
// always set; Next and Previous are nil when the page is at the corresponding
// boundary.
type Links struct {
	First    string  `json:"first"`
	Last     string  `json:"last"`
	Next     *string `json:"next,omitempty"`
	Previous *string `json:"previous,omitempty"`
}

func EncodeCursor(data Cursor) string {
	b, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.StdEncoding.EncodeToString(b)
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

// BuildLinks computes navigation links for a collection of total items viewed
// through an offset/limit window.
func BuildLinks(offset, limit, total int) Links {
	links := Links{
		First: EncodeCursor(Cursor{Offset: 0, Limit: limit}),
		Last:  EncodeCursor(Cursor{Offset: lastOffset(limit, total), Limit: limit}),
	}

	if offset+limit < total {
		next := EncodeCursor(Cursor{Offset: offset + limit, Limit: limit})
		links.Next = &next
	}

	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		token := EncodeCursor(Cursor{Offset: prev, Limit: limit})
		links.Previous = &token
	}

	return links
}

func lastOffset(limit, total int) int {
	if limit <= 0 || total <= limit {
		return 0
	}
	last := ((total - 1) / limit) * limit
	return last
}

// Slice returns the window [offset, offset+limit) of items. An out-of-range
// offset yields an empty slice rather than an error.
func Slice[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
