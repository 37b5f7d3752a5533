package lead

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFromMapDefaults(t *testing.T) {
	assert.Equal(t, Record{}, RecordFromMap(nil))
	assert.Equal(t, Record{}, RecordFromMap(map[string]any{
		"business_name": nil, "rating": nil, "reviews": "n/a", "has_website": nil, "photos": "many",
	}))
}

func TestRecordFromJSON(t *testing.T) {
	raw := `{"business_name":"  Local Tiles ","rating":4.0,"reviews":20,"has_website":true,
		"website":"https://example.com","phone_number":"+91 1","photo_count":7,"category":"Tile store",
		"address":"MI Road, Jaipur","website_candidates":["https://www.google.com/url?q=https://example.com",""]}`
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	rec := RecordFromMap(m)
	assert.Equal(t, Record{
		BusinessName: "Local Tiles",
		Rating:       4.0,
		Reviews:      20,
		HasWebsite:   true,
		Website:      "https://example.com",
		Phone:        "+91 1",
		Photos:       7,
		Category:     "Tile store",
		Address:      "MI Road, Jaipur",
		Candidates:   []string{"https://www.google.com/url?q=https://example.com"},
	}, rec)
}

func TestRecordFromJSONNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"rating":4.6,"reviews":1200,"photos":3.0,"has_website":1}`))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))

	rec := RecordFromMap(m)
	assert.InDelta(t, 4.6, rec.Rating, 1e-9)
	assert.Equal(t, 1200, rec.Reviews)
	assert.Equal(t, 3, rec.Photos)
	assert.True(t, rec.HasWebsite)
}

func TestRecordFromCSVStrings(t *testing.T) {
	rec := RecordFromMap(map[string]any{
		"name":               "Stone Gallery",
		"rating":             "4,4",
		"reviews":            "(1,234)",
		"has_website":        "Yes",
		"photos":             "",
		"website_candidates": "https://a.in | https://b.in",
		"url":                "https://maps.example/place/1",
	})
	assert.Equal(t, "Stone Gallery", rec.BusinessName)
	assert.InDelta(t, 4.4, rec.Rating, 1e-9)
	assert.Equal(t, 1234, rec.Reviews)
	assert.True(t, rec.HasWebsite)
	assert.Equal(t, 0, rec.Photos)
	assert.Equal(t, []string{"https://a.in", "https://b.in"}, rec.Candidates)
	assert.Equal(t, "https://maps.example/place/1", rec.MapsURL)
}

func TestNegativeValuesArePreserved(t *testing.T) {
	rec := RecordFromMap(map[string]any{"reviews": -5.0, "photos": "-2", "rating": 7.5})
	assert.Equal(t, -5, rec.Reviews)
	assert.Equal(t, -2, rec.Photos)
	assert.InDelta(t, 7.5, rec.Rating, 1e-9)
}

func TestParseRating(t *testing.T) {
	assert.InDelta(t, 4.3, ParseRating("4.3"), 1e-9)
	assert.InDelta(t, 4.3, ParseRating(" 4,3 "), 1e-9)
	assert.Zero(t, ParseRating(""))
	assert.Zero(t, ParseRating("four"))
	assert.Zero(t, ParseRating("NaN"))
	assert.Zero(t, ParseRating("+Inf"))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 57, ParseCount("(57)"))
	assert.Equal(t, 1234, ParseCount("1,234"))
	assert.Equal(t, 1234, ParseCount("1 234"))
	assert.Equal(t, -3, ParseCount("-3"))
	assert.Zero(t, ParseCount("12 reviews"))
	assert.Zero(t, ParseCount(""))
}

func TestBoolVariants(t *testing.T) {
	for _, v := range []any{true, "true", "1", "y", "YES", 1.0, 2} {
		assert.True(t, toBool(v), "%v", v)
	}
	for _, v := range []any{false, "false", "no", "", 0.0, nil, []string{"x"}} {
		assert.False(t, toBool(v), "%v", v)
	}
}
