// Package analyzer implements the heuristic scoring engine for audited
// web projects. Each analyzer is a pure function over in-memory strings
// and structures: it consumes compiled CSS, raw CSS/HTML, or extracted
// page data and reduces them to a 0-100 quality score with a graded
// breakdown and improvement suggestions.
//
// Analyzers never fail. Unparseable colors, unresolvable variable
// chains and malformed URLs are dropped from the counts; every
// zero-input case has an explicit branch returning a well-formed
// result.
package analyzer

import "math"

// Criterion is a single scored line of a breakdown.
type Criterion struct {
	Score   int    `json:"score"`
	Max     int    `json:"max"`
	Details string `json:"details"`
}

// ScoreResult is the common shape produced by every analyzer.
// Total always equals the sum of the breakdown scores.
type ScoreResult struct {
	Total        int                  `json:"total"`
	Breakdown    map[string]Criterion `json:"breakdown"`
	Grade        string               `json:"grade"`
	Improvements []string             `json:"improvements"`
}

// Grade thresholds, identical across all analyzers.
const (
	gradeAMin = 90
	gradeBMin = 80
	gradeCMin = 70
	gradeDMin = 60
)

// GradeFor maps a total score to its letter grade.
func GradeFor(total int) string {
	switch {
	case total >= gradeAMin:
		return "A"
	case total >= gradeBMin:
		return "B"
	case total >= gradeCMin:
		return "C"
	case total >= gradeDMin:
		return "D"
	default:
		return "F"
	}
}

// finalize computes Total from the breakdown and assigns the grade.
func (r *ScoreResult) finalize() {
	total := 0
	for _, c := range r.Breakdown {
		total += c.Score
	}
	r.Total = total
	r.Grade = GradeFor(total)
}

// scale returns round(max * ratio) clamped to [0, max].
func scale(max int, ratio float64) int {
	if math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio >= 1 {
		return max
	}
	return int(math.Round(float64(max) * ratio))
}

// ratio returns num/den, or 0 when den is zero. Coverage ratios are
// defined as 0 on empty sets, never NaN.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
