package recorder

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"discernment-trainer/internal/models"
)

var (
	ErrUnknownNotification = errors.New("notification is not part of the active set")
	ErrAlreadyRecorded     = errors.New("notification already has a terminal record")
	ErrOutOfOrder          = errors.New("notification answered out of order")
)

// Pacing controls how fast the exposure feed surfaces items
type Pacing struct {
	FirstDelay time.Duration
	Delay      time.Duration
	Jitter     time.Duration
}

// DefaultPacing matches the feel of a phone buzzing every couple of seconds
var DefaultPacing = Pacing{
	FirstDelay: 500 * time.Millisecond,
	Delay:      2500 * time.Millisecond,
}

// Exposure records how a learner reacts to the exposure feed.
// Each item ends the pass with exactly one terminal interaction.
type Exposure struct {
	items     []models.Notification
	visibleAt map[string]time.Time
	records   []models.Interaction
	surfaced  int
	pacing    Pacing
	rng       *rand.Rand
}

// NewExposure creates a recorder over the exposure items
func NewExposure(items []models.Notification, pacing Pacing) *Exposure {
	return &Exposure{
		items:     slices.Clone(items),
		visibleAt: make(map[string]time.Time, len(items)),
		pacing:    pacing,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Exposure) find(id string) (models.Notification, bool) {
	for _, n := range e.items {
		if n.ID == id {
			return n, true
		}
	}
	return models.Notification{}, false
}

// Next surfaces the next unseen item and marks it visible at the given time.
// ok is false once every item has been surfaced.
func (e *Exposure) Next(at time.Time) (models.Notification, bool) {
	for e.surfaced < len(e.items) {
		n := e.items[e.surfaced]
		e.surfaced++
		if _, seen := e.visibleAt[n.ID]; seen {
			continue
		}
		e.visibleAt[n.ID] = at
		return n, true
	}
	return models.Notification{}, false
}

// NextDelay is how long the feed waits before surfacing the next item, 0 when none is left
func (e *Exposure) NextDelay() time.Duration {
	if e.surfaced >= len(e.items) {
		return 0
	}
	return e.delay()
}

func (e *Exposure) delay() time.Duration {
	d := e.pacing.Delay
	if e.surfaced == 0 {
		d = e.pacing.FirstDelay
	}
	if e.pacing.Jitter > 0 {
		d += time.Duration(e.rng.Int63n(int64(e.pacing.Jitter) + 1))
	}
	return d
}

// MarkVisible notes when an item first became visible. Later calls keep the original time.
func (e *Exposure) MarkVisible(id string, at time.Time) error {
	if _, ok := e.find(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNotification, id)
	}
	if _, seen := e.visibleAt[id]; !seen {
		e.visibleAt[id] = at
	}
	return nil
}

// Record stores the learner's action on an item.
// A negative action replaces an earlier "opened" record for the same item;
// its reaction time still counts from when the item first became visible.
func (e *Exposure) Record(id string, action models.Action, at time.Time) (models.Interaction, error) {
	if _, ok := e.find(id); !ok {
		return models.Interaction{}, fmt.Errorf("%w: %q", ErrUnknownNotification, id)
	}
	if action.Negative() {
		action = models.ActionIgnored
	}

	idx := slices.IndexFunc(e.records, func(r models.Interaction) bool {
		return r.NotificationID == id
	})
	if idx >= 0 {
		if e.records[idx].Action != models.ActionOpened || action != models.ActionIgnored {
			return models.Interaction{}, fmt.Errorf("%w: %q", ErrAlreadyRecorded, id)
		}
		e.records = slices.Delete(e.records, idx, idx+1)
	}

	visible, seen := e.visibleAt[id]
	if !seen {
		visible = at
		e.visibleAt[id] = at
	}
	reaction := at.Sub(visible).Milliseconds()
	if reaction < 0 {
		reaction = 0
	}

	rec := models.Interaction{
		NotificationID: id,
		Action:         action,
		ReactionTimeMs: reaction,
		CreatedAtMs:    at.UnixMilli(),
	}
	e.records = append(e.records, rec)
	return rec, nil
}

// Complete reports whether every item has its terminal record
func (e *Exposure) Complete() bool {
	if len(e.records) == 0 {
		return false
	}
	for _, n := range e.items {
		if !slices.ContainsFunc(e.records, func(r models.Interaction) bool {
			return r.NotificationID == n.ID
		}) {
			return false
		}
	}
	return true
}

// Interactions returns the recorded interactions in record order
func (e *Exposure) Interactions() []models.Interaction {
	return slices.Clone(e.records)
}

// Progress returns how many items have a record out of the total
func (e *Exposure) Progress() (recorded, total int) {
	return len(e.records), len(e.items)
}
