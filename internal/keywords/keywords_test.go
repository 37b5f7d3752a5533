package keywords

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetMatch(t *testing.T) {
	set := NewSet("kajaria", "Somany", "experience centre", " ", "kajaria")

	assert.Equal(t, []string{"kajaria", "somany", "experience centre"}, set.Words())
	assert.Equal(t, 3, set.Len())

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Kajaria Tiles Jaipur", "kajaria", true},
		{"SOMANY ceramics", "somany", true},
		{"Tile Experience Centre", "experience centre", true},
		{"https://www.kajariaceramics.com", "kajaria", true},
		{"Local Tiles", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := set.Match(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestSetMatchPrefersDeclarationOrder(t *testing.T) {
	set := NewSet("tiles", "tile")
	got, ok := set.Match("ceramic tiles")
	assert.True(t, ok)
	assert.Equal(t, "tiles", got)
}

func TestEmptyAndNilSets(t *testing.T) {
	var nilSet *Set
	assert.False(t, nilSet.Contains("anything"))
	assert.Nil(t, nilSet.Words())
	assert.False(t, NewSet().Contains("anything"))
	assert.False(t, NewSet("", "  ").Contains("anything"))
}

func TestSetConcurrentUse(t *testing.T) {
	set := NewSet("gtag(", "analytics.js", "google-analytics")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, set.Contains("<script>gtag('config')</script>"))
				assert.False(t, set.Contains("<p>plain page</p>"))
			}
		}()
	}
	wg.Wait()
}

func TestSetMatchIndex(t *testing.T) {
	set := NewSet("alpha", "beta", "gamma")

	i, ok := set.MatchIndex("GAMMA and Beta")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = set.MatchIndex("delta")
	assert.False(t, ok)
	assert.Equal(t, -1, i)

	var nilSet *Set
	_, ok = nilSet.MatchIndex("alpha")
	assert.False(t, ok)
}
