package lead

import (
	"encoding/json"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jainprashuk/LeadLens/internal/sitecheck"
)

func stubChecker(score int) sitecheck.Checker {
	return sitecheck.CheckerFunc(func(string, time.Duration) sitecheck.Result {
		return sitecheck.Present(score, map[string]string{"note": "fake"})
	})
}

func TestBrandDisqualification(t *testing.T) {
	s := NewScorer(WithChecker(stubChecker(20)))

	tests := []struct {
		name   string
		record Record
		reason string
	}{
		{"name match", Record{BusinessName: "Kajaria Tiles Jaipur", Rating: 4.0, Reviews: 10}, ReasonBrandName},
		{"name match ignores other signals", Record{BusinessName: "SOMANY Ceramics", Rating: 5, Reviews: 900, Photos: 50, HasWebsite: true, Phone: "1"}, ReasonBrandName},
		{"multi-word brand", Record{BusinessName: "Tile Experience Centre"}, ReasonBrandName},
		{"website match", Record{BusinessName: "Authorised Dealer", HasWebsite: true, Website: "https://www.NitcoTiles.com"}, ReasonBrandWebsite},
		{"name wins over website", Record{BusinessName: "Varmora Point", Website: "https://orientbell.com"}, ReasonBrandName},
		{"earlier brand in website wins", Record{BusinessName: "Orientbell Gallery", Website: "https://kajaria-dealer.in"}, ReasonBrandWebsite},
		{"same brand prefers name", Record{BusinessName: "Nitco Hub", Website: "https://nitco.in"}, ReasonBrandName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Score(tt.record)
			assert.Equal(t, 0, res.Score)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Contains(t, res.Reason, "DISQUALIFIED")
			assert.Equal(t, DisqualifiedBrand, res.Disqualified)
			assert.True(t, res.IsDisqualified())
		})
	}
}

func TestBrandCheckSkipsProbe(t *testing.T) {
	var calls int32
	checker := sitecheck.CheckerFunc(func(string, time.Duration) sitecheck.Result {
		atomic.AddInt32(&calls, 1)
		return sitecheck.Present(20, nil)
	})
	s := NewScorer(WithChecker(checker))

	s.Score(Record{BusinessName: "Infinity Tiles", HasWebsite: true, Website: "https://example.com"})
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestStrongOfflineBoundaries(t *testing.T) {
	s := NewScorer()
	tests := []struct {
		name         string
		record       Record
		disqualified bool
	}{
		{"exact thresholds", Record{BusinessName: "Shop", Rating: 4.2, Reviews: 50}, true},
		{"above thresholds", Record{BusinessName: "Some Local Store", Rating: 4.3, Reviews: 60}, true},
		{"rating just below", Record{BusinessName: "Shop", Rating: 4.19, Reviews: 50}, false},
		{"reviews just below", Record{BusinessName: "Shop", Rating: 4.2, Reviews: 49}, false},
		{"has website", Record{BusinessName: "Shop", Rating: 4.8, Reviews: 500, HasWebsite: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Score(tt.record)
			assert.Equal(t, tt.disqualified, res.IsDisqualified())
			if tt.disqualified {
				assert.Equal(t, 0, res.Score)
				assert.Equal(t, ReasonStrongOffline, res.Reason)
				assert.Equal(t, DisqualifiedOffline, res.Disqualified)
			} else {
				assert.Equal(t, ReasonComputed, res.Reason)
			}
		})
	}
}

func TestScoreComponents(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		checker sitecheck.Checker
		want    int
	}{
		{"empty record", Record{}, nil, 0},
		{"website base only, probe off", Record{HasWebsite: true, Website: "https://example.com"}, nil, 10},
		{"website with probe", Record{HasWebsite: true, Website: "https://example.com"}, stubChecker(15), 25},
		{"probe ignored without url", Record{HasWebsite: true}, stubChecker(15), 10},
		{"probe ignored without has_website", Record{Website: "https://example.com"}, stubChecker(15), 0},
		{"rating", Record{Rating: 4.0}, nil, 16},
		{"reviews scaled", Record{Reviews: 20}, nil, 4},
		{"reviews capped", Record{Reviews: 5000}, nil, 20},
		{"phone", Record{Phone: "+91 98290 00000"}, nil, 10},
		{"blank phone", Record{Phone: "   "}, nil, 0},
		{"photos scaled", Record{Photos: 3}, nil, 3},
		{"photos capped", Record{Photos: 80}, nil, 10},
		{"category", Record{Category: "Ceramic Tile Store"}, nil, 10},
		{"unrelated category", Record{Category: "Bakery"}, nil, 0},
		{
			"everything",
			Record{BusinessName: "Jaipur Tile Mart", HasWebsite: true, Website: "https://jtm.in", Rating: 5, Reviews: 100, Phone: "1", Photos: 10, Category: "Tile store"},
			stubChecker(20),
			100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(WithChecker(tt.checker))
			res := s.Score(tt.record)
			assert.Equal(t, tt.want, res.Score)
			assert.Equal(t, ReasonComputed, res.Reason)
			assert.False(t, res.IsDisqualified())
		})
	}
}

func TestFailedProbeContributesZero(t *testing.T) {
	failing := sitecheck.CheckerFunc(func(string, time.Duration) sitecheck.Result {
		return sitecheck.Absent(map[string]string{"error": "timeout"})
	})
	res := NewScorer(WithChecker(failing)).Score(Record{HasWebsite: true, Website: "https://down.example"})
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 0, res.SiteScore)
}

func TestProbeReceivesTimeout(t *testing.T) {
	var got time.Duration
	checker := sitecheck.CheckerFunc(func(_ string, timeout time.Duration) sitecheck.Result {
		got = timeout
		return sitecheck.Absent(nil)
	})
	NewScorer(WithChecker(checker), WithSiteTimeout(2*time.Second)).
		Score(Record{HasWebsite: true, Website: "https://example.com"})
	assert.Equal(t, 2*time.Second, got)

	NewScorer(WithChecker(checker)).Score(Record{HasWebsite: true, Website: "https://example.com"})
	assert.Equal(t, sitecheck.DefaultTimeout, got)
}

func TestSiteIntegrationScenario(t *testing.T) {
	s := NewScorer(WithChecker(stubChecker(15)))
	rec := Record{BusinessName: "Local Tiles", Rating: 4.0, Reviews: 20, HasWebsite: true, Website: "https://example.com"}

	res := s.Score(rec)
	// 10 website + 15 probe + 16 rating + 4 reviews.
	assert.Equal(t, 45, res.Score)
	assert.GreaterOrEqual(t, res.Score, 40)
	assert.Equal(t, 15, res.SiteScore)
}

func TestOutOfRangeInputsAreFlaggedNotNormalized(t *testing.T) {
	s := NewScorer()

	high := s.Score(Record{Rating: 10})
	assert.Equal(t, 40, high.Score)
	assert.Equal(t, []string{FlagRatingOutOfRange}, high.Flags)

	neg := s.Score(Record{Rating: 5, Reviews: -100, Photos: -10, Phone: "x"})
	// 20 rating - 20 reviews + 10 phone - 10 photos.
	assert.Equal(t, 0, neg.Score)
	assert.Equal(t, []string{FlagNegativeReviews, FlagNegativePhotos}, neg.Flags)

	assert.Empty(t, s.Score(Record{Rating: 4.5, Reviews: 3}).Flags)
}

func TestScoreAlwaysWithinBounds(t *testing.T) {
	ratings := []float64{-100, -1, 0, 2.5, 4.2, 5, 50, math.MaxFloat64, math.Inf(1), math.NaN()}
	counts := []int{-1 << 20, -1, 0, 7, 49, 50, 1 << 20}
	s := NewScorer(WithChecker(stubChecker(99)))
	for _, rating := range ratings {
		for _, reviews := range counts {
			for _, photos := range counts {
				for _, site := range []bool{false, true} {
					rec := Record{BusinessName: "Shop", Rating: rating, Reviews: reviews, Photos: photos, HasWebsite: site, Website: "https://x.in", Phone: "1", Category: "tiles"}
					res := s.Score(rec)
					require.GreaterOrEqual(t, res.Score, 0)
					require.LessOrEqual(t, res.Score, MaxLeadScore)
				}
			}
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer(WithChecker(stubChecker(12)))
	rec := Record{BusinessName: "Stone & Tile", Rating: 3.7, Reviews: 41, HasWebsite: true, Website: "https://st.in", Photos: 4, Category: "tile"}
	assert.Equal(t, s.Score(rec), s.Score(rec))
}

func TestScoreResultJSON(t *testing.T) {
	res := NewScorer().Score(Record{Rating: 9})
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":36,"reason":"Score computed from maps signals","site_score":0,"flags":["rating_out_of_range"]}`, string(b))
}
