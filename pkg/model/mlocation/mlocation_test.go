package mlocation

import (
	"testing"

	"github.com/aislelist/aislelist/pkg/model/maisle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilterType(t *testing.T) {
	tests := []struct {
		in   string
		want FilterType
	}{
		{"all", FilterTypeAll},
		{"IN_STOCK", FilterTypeInStock},
		{"in-stock", FilterTypeInStock},
		{" needed ", FilterTypeNeeded},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilterType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			roundTrip, err := ParseFilterType(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, roundTrip)
		})
	}

	_, err := ParseFilterType("sometimes")
	require.Error(t, err)
}

func TestDefaultAisle(t *testing.T) {
	loc := Location{Aisles: []maisle.Aisle{
		{ID: 1, Name: "Produce"},
		{ID: 2, Name: "Default", IsDefault: true},
	}}
	a, ok := loc.DefaultAisle()
	require.True(t, ok)
	assert.Equal(t, int64(2), a.ID)

	_, ok = Location{}.DefaultAisle()
	assert.False(t, ok)
}
