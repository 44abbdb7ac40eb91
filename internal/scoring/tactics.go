package scoring

import (
	"slices"

	"discernment-trainer/internal/models"
)

// Aggregate is the union of tactic sets in first-seen order
func Aggregate(sets ...[]models.Tactic) []models.Tactic {
	out := []models.Tactic{}
	for _, set := range sets {
		for _, t := range set {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Weaknesses lists the tactics of fraudulent items the learner got wrong.
// The first entry is the one remediation should target.
func Weaknesses(answers []models.Answer, lookup Lookup) []models.Tactic {
	return fraudTactics(answers, lookup, false)
}

// Strengths lists the tactics of fraudulent items the learner caught,
// minus anything that is also a weakness
func Strengths(answers []models.Answer, lookup Lookup) []models.Tactic {
	weak := Weaknesses(answers, lookup)
	out := []models.Tactic{}
	for _, t := range fraudTactics(answers, lookup, true) {
		if !slices.Contains(weak, t) {
			out = append(out, t)
		}
	}
	return out
}

func fraudTactics(answers []models.Answer, lookup Lookup, correct bool) []models.Tactic {
	var sets [][]models.Tactic
	for _, a := range answers {
		if a.IsCorrect != correct {
			continue
		}
		n, ok := lookup.Notification(a.NotificationID)
		if !ok || !n.IsFraudulent {
			continue
		}
		sets = append(sets, n.Tactics)
	}
	return Aggregate(sets...)
}
