package scoring

import (
	"testing"
	"time"

	"discernment-trainer/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupMap map[string]models.Notification

func (m lookupMap) Notification(id string) (models.Notification, bool) {
	n, ok := m[id]
	return n, ok
}

func scam(id string, tactics ...models.Tactic) models.Notification {
	return models.Notification{ID: id, Channel: models.ChannelText, IsFraudulent: true, Tactics: tactics}
}

func legit(id string) models.Notification {
	return models.Notification{ID: id, Channel: models.ChannelEmail}
}

func answer(t *testing.T, n models.Notification, d models.Decision, confidence int, taken time.Duration) models.Answer {
	t.Helper()
	a, err := NewAnswer(n, d, confidence, "", taken)
	require.NoError(t, err)
	return a
}

func TestNewAnswer(t *testing.T) {
	t.Run("correctness follows ground truth", func(t *testing.T) {
		assert.True(t, answer(t, scam("a"), models.DecisionFraudulent, 50, 0).IsCorrect)
		assert.False(t, answer(t, scam("a"), models.DecisionSafe, 50, 0).IsCorrect)
		assert.True(t, answer(t, legit("b"), models.DecisionSafe, 50, 0).IsCorrect)
		assert.False(t, answer(t, legit("b"), models.DecisionFraudulent, 50, 0).IsCorrect)
	})

	t.Run("keeps fields", func(t *testing.T) {
		a, err := NewAnswer(scam("a"), models.DecisionFraudulent, 75, "link looks off", 1500*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, models.Answer{
			NotificationID:    "a",
			Decision:          models.DecisionFraudulent,
			ConfidencePercent: 75,
			ReasoningText:     "link looks off",
			IsCorrect:         true,
			TimeTakenMs:       1500,
		}, a)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewAnswer(scam("a"), "maybe", 50, "", 0)
		assert.ErrorIs(t, err, ErrInvalidDecision)

		_, err = NewAnswer(scam("a"), models.DecisionSafe, 101, "", 0)
		assert.ErrorIs(t, err, ErrConfidenceRange)

		_, err = NewAnswer(scam("a"), models.DecisionSafe, -1, "", 0)
		assert.ErrorIs(t, err, ErrConfidenceRange)
	})

	t.Run("accepts range bounds", func(t *testing.T) {
		_, err := NewAnswer(scam("a"), models.DecisionSafe, 0, "", 0)
		assert.NoError(t, err)
		_, err = NewAnswer(scam("a"), models.DecisionSafe, 100, "", 0)
		assert.NoError(t, err)
	})
}

func TestScore(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Stats{}, Score(nil))
		assert.Equal(t, Stats{}, Score([]models.Answer{}))
	})

	t.Run("aggregates", func(t *testing.T) {
		answers := []models.Answer{
			answer(t, scam("a"), models.DecisionFraudulent, 80, 10*time.Second),
			answer(t, legit("b"), models.DecisionFraudulent, 40, 20*time.Second),
			answer(t, scam("c"), models.DecisionFraudulent, 90, 31*time.Second),
		}
		assert.Equal(t, Stats{
			Accuracy:        67,
			AvgConfidence:   70,
			AvgTimeTakenSec: 20,
			Correct:         2,
			Total:           3,
		}, Score(answers))
	})

	t.Run("order independent", func(t *testing.T) {
		a := answer(t, scam("a"), models.DecisionFraudulent, 80, 10*time.Second)
		b := answer(t, legit("b"), models.DecisionFraudulent, 35, 4*time.Second)
		assert.Equal(t, Score([]models.Answer{a, b}), Score([]models.Answer{b, a}))
	})

	t.Run("rounds half up", func(t *testing.T) {
		answers := []models.Answer{
			answer(t, scam("a"), models.DecisionFraudulent, 10, 500*time.Millisecond),
			answer(t, scam("b"), models.DecisionFraudulent, 15, 500*time.Millisecond),
		}
		stats := Score(answers)
		assert.Equal(t, 13, stats.AvgConfidence)
		assert.Equal(t, 1, stats.AvgTimeTakenSec)
	})
}

func TestComputeScore(t *testing.T) {
	t.Run("perfect run", func(t *testing.T) {
		answers := []models.Answer{
			answer(t, scam("a"), models.DecisionFraudulent, 100, 10*time.Second),
			answer(t, legit("b"), models.DecisionSafe, 100, 10*time.Second),
		}
		assert.Equal(t, 100, ComputeScore(100, answers))
	})

	t.Run("no correct answers has zero calibration", func(t *testing.T) {
		answers := []models.Answer{
			answer(t, scam("a"), models.DecisionSafe, 90, 70*time.Second),
		}
		assert.Equal(t, 0.0, ConfidenceCalibration(answers))
		assert.Equal(t, 0, ComputeScore(0, answers))
	})

	t.Run("calibration only counts correct answers", func(t *testing.T) {
		answers := []models.Answer{
			answer(t, scam("a"), models.DecisionFraudulent, 80, 0),
			answer(t, scam("b"), models.DecisionSafe, 10, 0),
			answer(t, scam("c"), models.DecisionFraudulent, 60, 0),
		}
		assert.Equal(t, 70.0, ConfidenceCalibration(answers))
	})
}

func TestTimeBonus(t *testing.T) {
	assert.Equal(t, 10, TimeBonus(0))
	assert.Equal(t, 10, TimeBonus(29))
	assert.Equal(t, 5, TimeBonus(30))
	assert.Equal(t, 5, TimeBonus(59))
	assert.Equal(t, 0, TimeBonus(60))
}

func TestAggregate(t *testing.T) {
	got := Aggregate(
		[]models.Tactic{models.Urgency},
		[]models.Tactic{models.Authority},
		[]models.Tactic{models.Urgency},
	)
	assert.Equal(t, []models.Tactic{models.Urgency, models.Authority}, got)
	assert.Equal(t, got, Aggregate(got, got))
	assert.Equal(t, []models.Tactic{}, Aggregate())
}

func TestWeaknessesAndStrengths(t *testing.T) {
	catalog := lookupMap{
		"a": scam("a", models.Threat, models.Urgency),
		"b": scam("b", models.Urgency, models.FakeLink),
		"c": legit("c"),
		"d": scam("d", models.Reward, models.Threat),
	}
	answers := []models.Answer{
		answer(t, catalog["a"], models.DecisionSafe, 50, 0),       // missed scam
		answer(t, catalog["c"], models.DecisionFraudulent, 50, 0), // false alarm, not a weakness
		answer(t, catalog["b"], models.DecisionSafe, 50, 0),       // missed scam
		answer(t, catalog["d"], models.DecisionFraudulent, 50, 0), // caught
	}

	assert.Equal(t, []models.Tactic{models.Threat, models.Urgency, models.FakeLink}, Weaknesses(answers, catalog))
	assert.Equal(t, []models.Tactic{models.Reward}, Strengths(answers, catalog))
}

func TestVulnerabilityRate(t *testing.T) {
	items := []models.Notification{scam("a"), scam("b"), legit("c")}

	t.Run("no scams", func(t *testing.T) {
		assert.Equal(t, 0, VulnerabilityRate(nil, []models.Notification{legit("c")}))
	})

	t.Run("counts opened scams only", func(t *testing.T) {
		interactions := []models.Interaction{
			{NotificationID: "a", Action: models.ActionOpened},
			{NotificationID: "b", Action: models.ActionIgnored},
			{NotificationID: "c", Action: models.ActionOpened},
		}
		assert.Equal(t, 50, VulnerabilityRate(interactions, items))
		assert.Equal(t, Exposure{ScamsOpened: 1, ScamsIgnored: 1, TotalScams: 2}, CountExposure(interactions, items))
	})
}

func TestImprovement(t *testing.T) {
	assert.Equal(t, 100, Improvement(100, 100))
	assert.Equal(t, 30, Improvement(80, 50))
	assert.Equal(t, 0, Improvement(20, 50))
}

func TestBuildReport(t *testing.T) {
	exposure := []models.Notification{scam("e1", models.Urgency), scam("e2", models.Authority), legit("e3")}
	test := lookupMap{
		"t1": scam("t1", models.FakeLink),
		"t2": legit("t2"),
	}

	t.Run("before and after scenario", func(t *testing.T) {
		report := BuildReport(Inputs{
			Interactions: []models.Interaction{
				{NotificationID: "e1", Action: models.ActionOpened},
				{NotificationID: "e2", Action: models.ActionOpened},
				{NotificationID: "e3", Action: models.ActionIgnored},
			},
			ExposureItems:  exposure,
			TrainedTactics: []models.Tactic{models.Urgency, models.Authority},
			Answers: []models.Answer{
				answer(t, test["t1"], models.DecisionFraudulent, 80, 10*time.Second),
				answer(t, test["t2"], models.DecisionSafe, 60, 20*time.Second),
			},
			Lookup: test,
		})

		assert.Equal(t, 100, report.VulnerabilityRate)
		assert.Equal(t, 100, report.Accuracy)
		assert.Equal(t, 70, report.AvgConfidence)
		assert.Equal(t, 15, report.AvgTimeTakenSec)
		assert.Equal(t, 70, report.ConfidenceCalibration)
		assert.Equal(t, 10, report.TimeBonus)
		assert.Equal(t, 91, report.DiscernmentScore)
		assert.Equal(t, 100, report.Improvement)
		assert.Equal(t, 2, report.CorrectAnswers)
		assert.Empty(t, report.Weaknesses)
		assert.Equal(t, []models.Tactic{models.FakeLink}, report.Strengths)
		assert.Equal(t, models.Tactic(""), report.FocusTactic)
	})

	t.Run("empty session degrades to zero", func(t *testing.T) {
		report := BuildReport(Inputs{ExposureItems: exposure, Lookup: test})

		assert.Equal(t, 0, report.Accuracy)
		assert.Equal(t, 0, report.VulnerabilityRate)
		assert.Equal(t, 0, report.Improvement)
		assert.Equal(t, 10, report.DiscernmentScore) // only the speed bonus survives
		assert.Equal(t, []models.Tactic{}, report.Weaknesses)
		assert.Equal(t, []models.Tactic{}, report.TrainedTactics)
	})

	t.Run("focus is first weakness", func(t *testing.T) {
		report := BuildReport(Inputs{
			Answers: []models.Answer{answer(t, test["t1"], models.DecisionSafe, 90, time.Second)},
			Lookup:  test,
		})
		assert.Equal(t, models.FakeLink, report.FocusTactic)
	})
}
