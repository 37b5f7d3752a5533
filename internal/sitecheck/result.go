// Package sitecheck probes a business homepage for basic technical hygiene and
// turns what it finds into a bounded 0-20 quality score.
package sitecheck

import "time"

const (
	// MaxScore caps every probe result.
	MaxScore = 20
	// DefaultTimeout bounds a probe when the caller passes no timeout.
	DefaultTimeout = 5 * time.Second
)

// Result is the outcome of one probe: either a valid score or an absence
// marker. Absent results always count as zero. Details are diagnostic only.
type Result struct {
	Score   int
	Details map[string]string
	present bool
}

// Present returns a valid result with score clamped to [0, MaxScore].
func Present(score int, details map[string]string) Result {
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return Result{Score: score, Details: orEmpty(details), present: true}
}

// Absent returns a result that carries no score.
func Absent(details map[string]string) Result {
	return Result{Details: orEmpty(details)}
}

// OK reports whether the probe produced a score.
func (r Result) OK() bool { return r.present }

// ScoreOrZero is the score callers add to a lead; absence is zero.
func (r Result) ScoreOrZero() int {
	if !r.present {
		return 0
	}
	return r.Score
}

// Checker probes a website. Implementations must not panic and must honour
// timeout; every failure is reported as an Absent result.
type Checker interface {
	Check(rawURL string, timeout time.Duration) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(rawURL string, timeout time.Duration) Result

// Check calls f.
func (f CheckerFunc) Check(rawURL string, timeout time.Duration) Result { return f(rawURL, timeout) }

// Disabled is the Checker used when network checks are turned off.
type Disabled struct{}

// Check always reports an absent result.
func (Disabled) Check(string, time.Duration) Result {
	return Absent(map[string]string{"status": "disabled"})
}

func orEmpty(details map[string]string) map[string]string {
	if details == nil {
		return map[string]string{}
	}
	return details
}
