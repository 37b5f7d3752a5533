package lead

import (
	"math"
	"strings"
	"time"

	"github.com/Jainprashuk/LeadLens/internal/keywords"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/sitecheck"
)

// Fixed scoring tables.
var (
	// BrandKeywords identify brand-owned showrooms, which are never leads.
	BrandKeywords = keywords.NewSet(
		"kajaria", "somany", "nitco", "varmora",
		"orientbell", "experience centre", "boutique", "infinity",
	)
	// CategoryKeywords mark categories relevant to the services being sold.
	CategoryKeywords = keywords.NewSet("tile", "tiles", "ceramic")
)

// Scoring constants.
const (
	MaxLeadScore = 100

	offlineMinRating  = 4.2
	offlineMinReviews = 50

	websiteBasePoints = 10
	ratingMaxPoints   = 20.0
	reviewsMaxPoints  = 20.0
	reviewsForMax     = 100.0
	phonePoints       = 10
	photosMaxPoints   = 10.0
	photosForMax      = 10.0
	categoryPoints    = 10
	maxRatingExpected = 5.0
)

// Reasons reported by the Scorer.
const (
	ReasonBrandName     = "DISQUALIFIED – Brand Showroom (name match)"
	ReasonBrandWebsite  = "DISQUALIFIED – Brand Showroom (website match)"
	ReasonStrongOffline = "DISQUALIFIED – Strong Offline Presence"
	ReasonComputed      = "Score computed from maps signals"
	disqualifiedPrefix  = "DISQUALIFIED"
)

// Disqualification says why a lead was forced to zero.
type Disqualification int

const (
	NotDisqualified Disqualification = iota
	DisqualifiedBrand
	DisqualifiedOffline
)

// Out-of-range input flags. Inputs are scored as given, never normalized.
const (
	FlagRatingOutOfRange = "rating_out_of_range"
	FlagNegativeReviews  = "negative_reviews"
	FlagNegativePhotos   = "negative_photos"
)

// ScoreResult is the Scorer's verdict on one record.
type ScoreResult struct {
	Score        int              `json:"score"`
	Reason       string           `json:"reason"`
	Disqualified Disqualification `json:"-"`
	// SiteScore is the probe's contribution, 0 when it did not run or failed.
	SiteScore int      `json:"site_score"`
	Flags     []string `json:"flags,omitempty"`
}

// IsDisqualified reports a hard zero outcome.
func (r ScoreResult) IsDisqualified() bool {
	return r.Score == 0 && r.Disqualified != NotDisqualified && strings.HasPrefix(r.Reason, disqualifiedPrefix)
}

// Scorer computes lead scores. It holds no mutable state and is safe for
// concurrent use as long as its Checker is.
type Scorer struct {
	checker sitecheck.Checker
	timeout time.Duration
	log     logger.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithChecker sets the site probe. A nil checker disables probing.
func WithChecker(c sitecheck.Checker) ScorerOption {
	return func(s *Scorer) {
		if c == nil {
			c = sitecheck.Disabled{}
		}
		s.checker = c
	}
}

// WithSiteTimeout bounds each probe.
func WithSiteTimeout(d time.Duration) ScorerOption {
	return func(s *Scorer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithScorerLogger sets the logger.
func WithScorerLogger(l logger.Logger) ScorerOption {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScorer builds a Scorer. Without WithChecker no network probe is made.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		checker: sitecheck.Disabled{},
		timeout: sitecheck.DefaultTimeout,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes a 0-100 lead score. Brand and strong-offline checks run
// first and short-circuit everything else.
func (s *Scorer) Score(r Record) ScoreResult {
	if reason, ok := brandMatch(r); ok {
		return ScoreResult{Reason: reason, Disqualified: DisqualifiedBrand}
	}

	if !r.HasWebsite && r.Rating >= offlineMinRating && r.Reviews >= offlineMinReviews {
		return ScoreResult{Reason: ReasonStrongOffline, Disqualified: DisqualifiedOffline}
	}

	flags := outOfRange(r)
	if len(flags) > 0 {
		s.log.Debug("scoring out-of-range input",
			logger.String("business", r.BusinessName),
			logger.Strings("flags", flags))
	}

	var total float64
	siteScore := 0
	if r.HasWebsite {
		total += websiteBasePoints
		siteScore = s.siteScore(r.Website)
		total += float64(siteScore)
	}

	rating := r.Rating
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = 0
	}
	total += (rating / maxRatingExpected) * ratingMaxPoints
	total += math.Min((float64(r.Reviews)/reviewsForMax)*reviewsMaxPoints, reviewsMaxPoints)

	if strings.TrimSpace(r.Phone) != "" {
		total += phonePoints
	}

	total += math.Min((float64(r.Photos)/photosForMax)*photosMaxPoints, photosMaxPoints)

	if CategoryKeywords.Contains(r.Category) {
		total += categoryPoints
	}

	total = math.Max(0, math.Min(total, MaxLeadScore))
	return ScoreResult{
		Score:     int(math.RoundToEven(total)),
		Reason:    ReasonComputed,
		SiteScore: siteScore,
		Flags:     flags,
	}
}

// brandMatch walks brands in declaration order; for each brand the name is
// tested before the website.
func brandMatch(r Record) (string, bool) {
	nameIdx, nameOK := BrandKeywords.MatchIndex(r.BusinessName)
	webIdx, webOK := BrandKeywords.MatchIndex(strings.TrimSpace(r.Website))
	switch {
	case nameOK && (!webOK || nameIdx <= webIdx):
		return ReasonBrandName, true
	case webOK:
		return ReasonBrandWebsite, true
	}
	return "", false
}

func (s *Scorer) siteScore(website string) int {
	website = strings.TrimSpace(website)
	if website == "" {
		return 0
	}
	res := s.checker.Check(website, s.timeout)
	if !res.OK() {
		return 0
	}
	return min(res.ScoreOrZero(), sitecheck.MaxScore)
}

func outOfRange(r Record) []string {
	var flags []string
	if r.Rating < 0 || r.Rating > maxRatingExpected || math.IsNaN(r.Rating) {
		flags = append(flags, FlagRatingOutOfRange)
	}
	if r.Reviews < 0 {
		flags = append(flags, FlagNegativeReviews)
	}
	if r.Photos < 0 {
		flags = append(flags, FlagNegativePhotos)
	}
	return flags
}
