package webaudit

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ScoreStats summarizes one criterion across a set of reports.
type ScoreStats struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// ClassStats aggregates every stored report for a class-wide view.
type ClassStats struct {
	Projects int          `json:"projects"`
	Overall  ScoreStats   `json:"overall"`
	ByKey    []ScoreStats `json:"byKey"`
}

// ComputeStats aggregates score totals across reports, per analyzer
// key plus an overall average per project.
func ComputeStats(reports []*AuditReport) ClassStats {
	stats := ClassStats{Projects: len(reports)}
	if len(reports) == 0 {
		return stats
	}

	byKey := make(map[string][]float64, len(ScoreKeys))
	overall := make([]float64, 0, len(reports))
	for _, report := range reports {
		scores := report.Scores()
		sum := 0.0
		for _, key := range ScoreKeys {
			total := float64(scores[key].Total)
			byKey[key] = append(byKey[key], total)
			sum += total
		}
		overall = append(overall, sum/float64(len(ScoreKeys)))
	}

	stats.Overall = summarize("overall", overall)
	for _, key := range ScoreKeys {
		stats.ByKey = append(stats.ByKey, summarize(key, byKey[key]))
	}
	return stats
}

func summarize(key string, totals []float64) ScoreStats {
	sorted := append([]float64(nil), totals...)
	sort.Float64s(sorted)
	return ScoreStats{
		Key:    key,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Min:    int(sorted[0]),
		Max:    int(sorted[len(sorted)-1]),
	}
}
