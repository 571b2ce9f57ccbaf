// Package pagination implements offset/limit arithmetic for the two
// list query styles the API accepts: a 1-based inclusive range string
// and 1-based page/size pairs. Requests carrying neither fall back to
// the unpaginated legacy path.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/algonet/backend/internal/errors"
)

const DefaultPageSize = 10

// Window is a resolved offset/limit pair ready for a SQL query.
type Window struct {
	Offset int
	Limit  int
}

// Page is the envelope returned by every paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Offset     int   `json:"offset"`
	Limit      int   `json:"limit"`
	RangeStart int   `json:"rangeStart"`
	RangeEnd   int   `json:"rangeEnd"`
}

// NewPage builds the envelope for a slice of items fetched at the given
// window. RangeStart and RangeEnd are 1-based inclusive positions of
// the returned rows within the full result set, both zero when the set
// is empty.
func NewPage[T any](items []T, total int64, w Window) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:  items,
		Total:  total,
		Offset: w.Offset,
		Limit:  w.Limit,
	}
	if total > 0 {
		p.RangeStart = w.Offset + 1
		p.RangeEnd = w.Offset + len(items)
	}
	return p
}

// ParseRange parses a "start-end" range string with 1-based inclusive
// bounds into an offset/limit window.
func ParseRange(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRange,
			"range must be of the form start-end")
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRange,
			fmt.Sprintf("invalid range bound %q", parts[0]))
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRange,
			fmt.Sprintf("invalid range bound %q", parts[1]))
	}
	if start < 1 || end < start {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidRangeValues,
			fmt.Sprintf("range %d-%d is not a valid 1-based interval", start, end))
	}
	return Window{Offset: start - 1, Limit: end - start + 1}, nil
}

// ParsePage resolves 1-based page/size query values into a window.
// Both values must be integers no smaller than one.
func ParsePage(pageStr, sizeStr string) (Window, error) {
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidPaging,
			fmt.Sprintf("invalid page %q", pageStr))
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidPaging,
			fmt.Sprintf("invalid size %q", sizeStr))
	}
	if page < 1 || size < 1 {
		return Window{}, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidPaging,
			"page and size must both be at least 1")
	}
	return Window{Offset: (page - 1) * size, Limit: size}, nil
}

// FromRequest resolves the pagination window for a listing request. A
// range parameter takes precedence over page/size; page and size only
// paginate when both are present. The second return value reports
// whether the request asked for pagination at all: when false, callers
// serve the full list without an envelope.
func FromRequest(r *http.Request) (Window, bool, error) {
	q := r.URL.Query()
	if rng := q.Get("range"); rng != "" {
		w, err := ParseRange(rng)
		return w, true, err
	}
	page, size := q.Get("page"), q.Get("size")
	if page != "" && size != "" {
		w, err := ParsePage(page, size)
		return w, true, err
	}
	return Window{}, false, nil
}
