package scoring

import (
	"errors"
	"fmt"
	"time"

	"discernment-trainer/internal/models"
)

var (
	ErrInvalidDecision = errors.New("decision must be safe or fraudulent")
	ErrConfidenceRange = errors.New("confidence must be between 0 and 100")
)

// Lookup resolves catalog records by id
type Lookup interface {
	Notification(id string) (models.Notification, bool)
}

// ParseDecision converts a raw string into a Decision
func ParseDecision(s string) (models.Decision, error) {
	switch d := models.Decision(s); d {
	case models.DecisionSafe, models.DecisionFraudulent:
		return d, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidDecision, s)
}

// NewAnswer builds the immutable answer for a notification.
// Correctness is fixed here and never recomputed.
func NewAnswer(n models.Notification, decision models.Decision, confidence int, reasoning string, taken time.Duration) (models.Answer, error) {
	if _, err := ParseDecision(string(decision)); err != nil {
		return models.Answer{}, err
	}
	if confidence < 0 || confidence > 100 {
		return models.Answer{}, fmt.Errorf("%w: got %d", ErrConfidenceRange, confidence)
	}

	return models.Answer{
		NotificationID:    n.ID,
		Decision:          decision,
		ConfidencePercent: confidence,
		ReasoningText:     reasoning,
		IsCorrect:         (decision == models.DecisionFraudulent) == n.IsFraudulent,
		TimeTakenMs:       taken.Milliseconds(),
	}, nil
}
