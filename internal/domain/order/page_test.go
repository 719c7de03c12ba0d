package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestNormalize_Defaults(t *testing.T) {
	var p PageRequest
	require.NoError(t, p.Normalize())

	assert.Equal(t, 0, p.Page)
	assert.Equal(t, 20, p.Size)
	assert.Equal(t, "placedAt", p.SortBy)
	assert.Equal(t, SortDesc, p.Direction)
	assert.Equal(t, "placed_at", p.SortColumn())
}

func TestPageRequestNormalize_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		req   PageRequest
		param string
	}{
		{"negative page", PageRequest{Page: -1}, "page"},
		{"size too small", PageRequest{Size: -5}, "pageSize"},
		{"size too large", PageRequest{Size: 101}, "pageSize"},
		{"unknown sort field", PageRequest{SortBy: "total"}, "sortBy"},
		{"bad direction", PageRequest{Direction: "sideways"}, "direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize()
			var pageErr *InvalidPageError
			require.ErrorAs(t, err, &pageErr)
			assert.Equal(t, tt.param, pageErr.Param)
		})
	}
}

func TestPageRequestNormalize_DirectionCaseInsensitive(t *testing.T) {
	p := PageRequest{Direction: "ASC"}
	require.NoError(t, p.Normalize())
	assert.Equal(t, SortAsc, p.Direction)
}

func TestPageRequestOffset(t *testing.T) {
	p := PageRequest{Page: 3, Size: 25}
	require.NoError(t, p.Normalize())
	assert.Equal(t, 75, p.Offset())
}
