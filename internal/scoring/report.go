package scoring

import (
	"discernment-trainer/internal/models"
)

// Report is the results bundle handed to the presentation layer as is
type Report struct {
	DiscernmentScore      int             `json:"discernment_score"`
	Accuracy              int             `json:"accuracy"`
	AvgConfidence         int             `json:"avg_confidence"`
	AvgTimeTakenSec       int             `json:"avg_time_taken_sec"`
	ConfidenceCalibration int             `json:"confidence_calibration"`
	TimeBonus             int             `json:"time_bonus"`
	CorrectAnswers        int             `json:"correct_answers"`
	TotalAnswers          int             `json:"total_answers"`
	VulnerabilityRate     int             `json:"vulnerability_rate"`
	Exposure              Exposure        `json:"exposure"`
	Improvement           int             `json:"improvement"`
	Weaknesses            []models.Tactic `json:"weaknesses"`
	Strengths             []models.Tactic `json:"strengths"`
	TrainedTactics        []models.Tactic `json:"trained_tactics"`
	FocusTactic           models.Tactic   `json:"focus_tactic,omitempty"`
}

// Inputs is everything a report is derived from
type Inputs struct {
	Interactions   []models.Interaction
	ExposureItems  []models.Notification
	TrainedTactics []models.Tactic
	Answers        []models.Answer
	Lookup         Lookup
}

// BuildReport derives the full results bundle. Degenerate inputs yield zeros.
func BuildReport(in Inputs) Report {
	stats := Score(in.Answers)
	exposure := CountExposure(in.Interactions, in.ExposureItems)
	vulnerability := VulnerabilityRate(in.Interactions, in.ExposureItems)

	r := Report{
		DiscernmentScore:      ComputeScore(stats.Accuracy, in.Answers),
		Accuracy:              stats.Accuracy,
		AvgConfidence:         stats.AvgConfidence,
		AvgTimeTakenSec:       stats.AvgTimeTakenSec,
		ConfidenceCalibration: round(ConfidenceCalibration(in.Answers)),
		TimeBonus:             TimeBonus(stats.AvgTimeTakenSec),
		CorrectAnswers:        stats.Correct,
		TotalAnswers:          stats.Total,
		VulnerabilityRate:     vulnerability,
		Exposure:              exposure,
		Improvement:           Improvement(vulnerability, stats.Accuracy),
		Weaknesses:            []models.Tactic{},
		Strengths:             []models.Tactic{},
		TrainedTactics:        Aggregate(in.TrainedTactics),
	}

	if in.Lookup != nil {
		r.Weaknesses = Weaknesses(in.Answers, in.Lookup)
		r.Strengths = Strengths(in.Answers, in.Lookup)
	}
	if len(r.Weaknesses) > 0 {
		r.FocusTactic = r.Weaknesses[0]
	}
	return r
}
