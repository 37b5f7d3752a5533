package lead

import "fmt"

// Category is the coarse bucket a lead falls into.
type Category string

// Categories, in the order they are checked.
const (
	CategoryDisqualifiedBrand   Category = "disqualified-brand"
	CategoryDisqualifiedOffline Category = "disqualified-offline"
	CategoryHighPriority        Category = "high-priority"
	CategoryMediumPriority      Category = "medium-priority"
	CategoryLowPriority         Category = "low-priority"
)

// Tier thresholds, inclusive lower bounds.
const (
	HighPriorityMinScore   = 70
	MediumPriorityMinScore = 40
)

var categoryLabels = map[Category]string{
	CategoryDisqualifiedBrand:   "DISQUALIFIED – Brand Showroom",
	CategoryDisqualifiedOffline: "DISQUALIFIED – Strong Offline Presence",
	CategoryHighPriority:        "PURSUE – High Priority",
	CategoryMediumPriority:      "POTENTIAL – Medium Priority",
	CategoryLowPriority:         "LOW – Low Priority",
}

var opportunityWords = map[Category]string{
	CategoryHighPriority:   "High",
	CategoryMediumPriority: "Medium",
	CategoryLowPriority:    "Low",
}

// Label is the human-readable form written to outputs.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Disqualified reports whether c is a disqualification bucket.
func (c Category) Disqualified() bool {
	return c == CategoryDisqualifiedBrand || c == CategoryDisqualifiedOffline
}

// Classification is the Classifier's output for one record.
type Classification struct {
	Category Category `json:"category"`
	// LeadType is the category label, or the Scorer's reason verbatim for
	// disqualified leads.
	LeadType    string      `json:"lead_type"`
	Explanation string      `json:"classification_reason"`
	Score       int         `json:"lead_score"`
	Result      ScoreResult `json:"-"`
}

// Classifier maps scores onto priority tiers.
type Classifier struct {
	scorer *Scorer
}

// NewClassifier wraps scorer; a nil scorer gets a default one without probing.
func NewClassifier(scorer *Scorer) *Classifier {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Classifier{scorer: scorer}
}

// Classify scores r once and buckets it.
func (c *Classifier) Classify(r Record) Classification {
	res := c.scorer.Score(r)

	if res.IsDisqualified() {
		cat := CategoryDisqualifiedBrand
		if res.Disqualified == DisqualifiedOffline {
			cat = CategoryDisqualifiedOffline
		}
		return Classification{
			Category:    cat,
			LeadType:    res.Reason,
			Explanation: res.Reason,
			Score:       res.Score,
			Result:      res,
		}
	}

	cat := TierForScore(res.Score)
	return Classification{
		Category:    cat,
		LeadType:    cat.Label(),
		Explanation: fmt.Sprintf("%s opportunity (score=%d). %s", opportunityWords[cat], res.Score, res.Reason),
		Score:       res.Score,
		Result:      res,
	}
}

// TierForScore applies the priority thresholds to a non-disqualified score.
func TierForScore(score int) Category {
	switch {
	case score >= HighPriorityMinScore:
		return CategoryHighPriority
	case score >= MediumPriorityMinScore:
		return CategoryMediumPriority
	default:
		return CategoryLowPriority
	}
}

var defaultClassifier = NewClassifier(nil)

// ComputeLeadScore scores r without any network probe.
func ComputeLeadScore(r Record) ScoreResult { return defaultClassifier.scorer.Score(r) }

// ClassifyLead classifies r without any network probe.
func ClassifyLead(r Record) Classification { return defaultClassifier.Classify(r) }

// Lead pairs a record with its classification.
type Lead struct {
	Record         Record
	Classification Classification
}
