package scoring

import (
	"math"

	"discernment-trainer/internal/models"
)

// Stats are the aggregate test statistics
type Stats struct {
	Accuracy        int `json:"accuracy"`
	AvgConfidence   int `json:"avg_confidence"`
	AvgTimeTakenSec int `json:"avg_time_taken_sec"`
	Correct         int `json:"correct"`
	Total           int `json:"total"`
}

// Score aggregates answers. An empty list scores zero everywhere.
func Score(answers []models.Answer) Stats {
	stats := Stats{Total: len(answers)}
	if len(answers) == 0 {
		return stats
	}

	var confidence, taken float64
	for _, a := range answers {
		if a.IsCorrect {
			stats.Correct++
		}
		confidence += float64(a.ConfidencePercent)
		taken += float64(a.TimeTakenMs)
	}

	n := float64(len(answers))
	stats.Accuracy = round(100 * float64(stats.Correct) / n)
	stats.AvgConfidence = round(confidence / n)
	stats.AvgTimeTakenSec = round(taken / n / 1000)
	return stats
}

// round is half-up, so 0.5 goes to 1 and -0.5 goes to 0
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
