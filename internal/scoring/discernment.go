package scoring

import (
	"discernment-trainer/internal/models"
)

// ConfidenceCalibration is the mean confidence of the correct answers, 0 when there are none
func ConfidenceCalibration(answers []models.Answer) float64 {
	var sum float64
	var n int
	for _, a := range answers {
		if a.IsCorrect {
			sum += float64(a.ConfidencePercent)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TimeBonus rewards quick decisions
func TimeBonus(avgTimeTakenSec int) int {
	switch {
	case avgTimeTakenSec < 30:
		return 10
	case avgTimeTakenSec < 60:
		return 5
	}
	return 0
}

// ComputeScore weighs accuracy, calibration and speed into the discernment score
func ComputeScore(accuracy int, answers []models.Answer) int {
	bonus := TimeBonus(Score(answers).AvgTimeTakenSec)
	return round(float64(accuracy)*0.6 + ConfidenceCalibration(answers)*0.3 + float64(bonus))
}

// Exposure counts the learner's reactions to the fraudulent exposure items
type Exposure struct {
	ScamsOpened  int `json:"scams_opened"`
	ScamsIgnored int `json:"scams_ignored"`
	TotalScams   int `json:"total_scams"`
}

// CountExposure joins interactions with the exposure items
func CountExposure(interactions []models.Interaction, items []models.Notification) Exposure {
	fraud := make(map[string]bool, len(items))
	var out Exposure
	for _, n := range items {
		if n.IsFraudulent {
			fraud[n.ID] = true
			out.TotalScams++
		}
	}
	for _, i := range interactions {
		if !fraud[i.NotificationID] {
			continue
		}
		switch i.Action {
		case models.ActionOpened:
			out.ScamsOpened++
		case models.ActionIgnored:
			out.ScamsIgnored++
		}
	}
	return out
}

// VulnerabilityRate is the share of fraudulent exposure items the learner opened
func VulnerabilityRate(interactions []models.Interaction, items []models.Notification) int {
	e := CountExposure(interactions, items)
	if e.TotalScams == 0 {
		return 0
	}
	return round(100 * float64(e.ScamsOpened) / float64(e.TotalScams))
}

// Improvement compares the before rate with the after error rate
func Improvement(vulnerabilityRate, accuracy int) int {
	return max(0, vulnerabilityRate-(100-accuracy))
}
