package recorder

import (
	"testing"
	"time"

	"discernment-trainer/internal/models"
	"discernment-trainer/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestRecord(t *testing.T) {
	t.Run("one answer per item in order", func(t *testing.T) {
		rec := NewTest(items(), t0)

		cur, ok := rec.Current()
		require.True(t, ok)
		assert.Equal(t, "a", cur.ID)

		a, err := rec.Record("a", models.DecisionFraudulent, 80, "asks for KYC", t0.Add(10*time.Second))
		require.NoError(t, err)
		assert.True(t, a.IsCorrect)
		assert.Equal(t, int64(10000), a.TimeTakenMs)

		// Next item is timed from the previous answer.
		b, err := rec.Record("b", models.DecisionSafe, 40, "", t0.Add(14*time.Second))
		require.NoError(t, err)
		assert.False(t, b.IsCorrect)
		assert.Equal(t, int64(4000), b.TimeTakenMs)

		assert.False(t, rec.Complete())
		_, err = rec.Record("c", models.DecisionSafe, 100, "", t0.Add(20*time.Second))
		require.NoError(t, err)
		assert.True(t, rec.Complete())

		_, ok = rec.Current()
		assert.False(t, ok)

		answers := rec.Answers()
		require.Len(t, answers, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{answers[0].NotificationID, answers[1].NotificationID, answers[2].NotificationID})
	})

	t.Run("mark visible resets the clock", func(t *testing.T) {
		rec := NewTest(items(), t0)
		require.NoError(t, rec.MarkVisible("a", t0.Add(30*time.Second)))

		a, err := rec.Record("a", models.DecisionFraudulent, 50, "", t0.Add(33*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(3000), a.TimeTakenMs)

		assert.ErrorIs(t, rec.MarkVisible("c", t0), ErrOutOfOrder)
	})

	t.Run("rejects", func(t *testing.T) {
		rec := NewTest(items(), t0)

		_, err := rec.Record("zzz", models.DecisionSafe, 50, "", t0)
		assert.ErrorIs(t, err, ErrUnknownNotification)

		_, err = rec.Record("b", models.DecisionSafe, 50, "", t0)
		assert.ErrorIs(t, err, ErrOutOfOrder)

		_, err = rec.Record("a", models.DecisionSafe, 150, "", t0)
		assert.ErrorIs(t, err, scoring.ErrConfidenceRange)

		_, err = rec.Record("a", models.DecisionSafe, 50, "", t0)
		require.NoError(t, err)
		_, err = rec.Record("a", models.DecisionSafe, 50, "", t0)
		assert.ErrorIs(t, err, ErrAlreadyRecorded)

		answered, total := rec.Progress()
		assert.Equal(t, 1, answered)
		assert.Equal(t, 3, total)
	})

	t.Run("empty test is complete", func(t *testing.T) {
		assert.True(t, NewTest(nil, t0).Complete())
	})
}
