package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================== Listing JSON Tests =====================

func TestListing_UnmarshalJSON_BothCoordinatesMakeMappable(t *testing.T) {
	data := []byte(`{"id":1,"title":"Garden","latitude":37.5,"longitude":-122.1,"owner_id":7}`)

	var l Listing
	require.NoError(t, json.Unmarshal(data, &l))

	require.True(t, l.Mappable())
	assert.Equal(t, 37.5, l.Coordinates.Latitude)
	assert.Equal(t, -122.1, l.Coordinates.Longitude)
}

func TestListing_UnmarshalJSON_MissingCoordinatesStayValid(t *testing.T) {
	data := []byte(`{"id":1,"title":"Garden","owner_id":7}`)

	var l Listing
	require.NoError(t, json.Unmarshal(data, &l))

	assert.False(t, l.Mappable())
	assert.Equal(t, "Garden", l.Title)
}

func TestListing_UnmarshalJSON_OneSidedPairDropped(t *testing.T) {
	// Latitude without longitude is not a usable position
	data := []byte(`{"id":1,"title":"Garden","latitude":37.5,"owner_id":7}`)

	var l Listing
	require.NoError(t, json.Unmarshal(data, &l))

	assert.False(t, l.Mappable())
	assert.Nil(t, l.Coordinates)
}

func TestListing_MarshalJSON_FlattensCoordinates(t *testing.T) {
	l := Listing{
		ID:          1,
		Title:       "Garden",
		Coordinates: &Coordinates{Latitude: 37.5, Longitude: -122.1},
	}

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 37.5, raw["latitude"])
	assert.Equal(t, -122.1, raw["longitude"])
}

func TestListing_MarshalJSON_NoCoordinatesOmitsFields(t *testing.T) {
	l := Listing{ID: 1, Title: "Garden"}

	data, err := json.Marshal(l)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "latitude")
	assert.NotContains(t, raw, "longitude")
}

// ===================== Category Tests =====================

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsValidCategory(c), c)
	}

	assert.False(t, IsValidCategory("Gardening"))
	assert.False(t, IsValidCategory("community")) // literal match, case matters
	assert.False(t, IsValidCategory(CategoryAll)) // sentinel is not a category
}
