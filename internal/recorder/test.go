package recorder

import (
	"fmt"
	"slices"
	"time"

	"discernment-trainer/internal/models"
	"discernment-trainer/internal/scoring"
)

// Test collects one answer per test item, in catalog order
type Test struct {
	items   []models.Notification
	answers []models.Answer
	shownAt time.Time
}

// NewTest starts a test pass; the first item counts as shown at start
func NewTest(items []models.Notification, start time.Time) *Test {
	return &Test{
		items:   slices.Clone(items),
		shownAt: start,
	}
}

// Current returns the item awaiting an answer
func (t *Test) Current() (models.Notification, bool) {
	if len(t.answers) >= len(t.items) {
		return models.Notification{}, false
	}
	return t.items[len(t.answers)], true
}

// MarkVisible resets the shown time of the current item
func (t *Test) MarkVisible(id string, at time.Time) error {
	cur, ok := t.Current()
	if !ok || cur.ID != id {
		return t.reject(id)
	}
	t.shownAt = at
	return nil
}

// Record scores the answer for the current item
func (t *Test) Record(id string, decision models.Decision, confidence int, reasoning string, at time.Time) (models.Answer, error) {
	cur, ok := t.Current()
	if !ok || cur.ID != id {
		return models.Answer{}, t.reject(id)
	}

	taken := at.Sub(t.shownAt)
	if taken < 0 {
		taken = 0
	}
	answer, err := scoring.NewAnswer(cur, decision, confidence, reasoning, taken)
	if err != nil {
		return models.Answer{}, err
	}

	t.answers = append(t.answers, answer)
	t.shownAt = at
	return answer, nil
}

func (t *Test) reject(id string) error {
	if !slices.ContainsFunc(t.items, func(n models.Notification) bool { return n.ID == id }) {
		return fmt.Errorf("%w: %q", ErrUnknownNotification, id)
	}
	if slices.ContainsFunc(t.answers, func(a models.Answer) bool { return a.NotificationID == id }) {
		return fmt.Errorf("%w: %q", ErrAlreadyRecorded, id)
	}
	return fmt.Errorf("%w: %q", ErrOutOfOrder, id)
}

// Complete reports whether every test item has been answered
func (t *Test) Complete() bool {
	return len(t.answers) == len(t.items)
}

// Answers returns the answers in catalog order
func (t *Test) Answers() []models.Answer {
	return slices.Clone(t.answers)
}

// Progress returns how many items are answered out of the total
func (t *Test) Progress() (answered, total int) {
	return len(t.answers), len(t.items)
}
