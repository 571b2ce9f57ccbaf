package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/algonet/backend/internal/errors"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestParseRange(t *testing.T) {
	t.Run("first ten", func(t *testing.T) {
		w, err := ParseRange("1-10")
		require.NoError(t, err)
		assert.Equal(t, Window{Offset: 0, Limit: 10}, w)
	})

	t.Run("single element", func(t *testing.T) {
		w, err := ParseRange("5-5")
		require.NoError(t, err)
		assert.Equal(t, Window{Offset: 4, Limit: 1}, w)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseRange("10")
		assertCode(t, err, apperrors.CodeInvalidRange)
	})

	t.Run("non numeric bound", func(t *testing.T) {
		_, err := ParseRange("abc-5")
		assertCode(t, err, apperrors.CodeInvalidRange)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := ParseRange("5-2")
		assertCode(t, err, apperrors.CodeInvalidRangeValues)
	})

	t.Run("zero start", func(t *testing.T) {
		_, err := ParseRange("0-10")
		assertCode(t, err, apperrors.CodeInvalidRangeValues)
	})
}

func TestParsePage(t *testing.T) {
	t.Run("first page", func(t *testing.T) {
		w, err := ParsePage("1", "10")
		require.NoError(t, err)
		assert.Equal(t, Window{Offset: 0, Limit: 10}, w)
	})

	t.Run("second page", func(t *testing.T) {
		w, err := ParsePage("3", "20")
		require.NoError(t, err)
		assert.Equal(t, Window{Offset: 40, Limit: 20}, w)
	})

	t.Run("zero page", func(t *testing.T) {
		_, err := ParsePage("0", "10")
		assertCode(t, err, apperrors.CodeInvalidPaging)
	})

	t.Run("zero size", func(t *testing.T) {
		_, err := ParsePage("1", "0")
		assertCode(t, err, apperrors.CodeInvalidPaging)
	})

	t.Run("garbage size", func(t *testing.T) {
		_, err := ParsePage("1", "ten")
		assertCode(t, err, apperrors.CodeInvalidPaging)
	})
}

func TestFromRequest(t *testing.T) {
	t.Run("range wins over page", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/graphs?range=1-5&page=3&size=50", nil)
		w, paginate, err := FromRequest(r)
		require.NoError(t, err)
		assert.True(t, paginate)
		assert.Equal(t, Window{Offset: 0, Limit: 5}, w)
	})

	t.Run("page and size", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/graphs?page=2&size=5", nil)
		w, paginate, err := FromRequest(r)
		require.NoError(t, err)
		assert.True(t, paginate)
		assert.Equal(t, Window{Offset: 5, Limit: 5}, w)
	})

	t.Run("page without size is the legacy path", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/graphs?page=2", nil)
		_, paginate, err := FromRequest(r)
		require.NoError(t, err)
		assert.False(t, paginate)
	})

	t.Run("no parameters", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/graphs", nil)
		_, paginate, err := FromRequest(r)
		require.NoError(t, err)
		assert.False(t, paginate)
	})
}

func TestNewPage(t *testing.T) {
	t.Run("full window", func(t *testing.T) {
		p := NewPage([]int{1, 2, 3}, 25, Window{Offset: 0, Limit: 3})
		assert.Equal(t, 1, p.RangeStart)
		assert.Equal(t, 3, p.RangeEnd)
		assert.Equal(t, int64(25), p.Total)
	})

	t.Run("last partial window", func(t *testing.T) {
		p := NewPage([]int{1, 2, 3, 4, 5}, 25, Window{Offset: 20, Limit: 10})
		assert.Equal(t, 21, p.RangeStart)
		assert.Equal(t, 25, p.RangeEnd)
	})

	t.Run("empty result set", func(t *testing.T) {
		p := NewPage[int](nil, 0, Window{Offset: 0, Limit: 10})
		assert.NotNil(t, p.Items)
		assert.Zero(t, p.RangeStart)
		assert.Zero(t, p.RangeEnd)
	})
}
