package training

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"discernment-trainer/internal/models"
	"discernment-trainer/internal/scoring"
)

var (
	ErrEmptySelection = errors.New("select at least one tactic")
	ErrDrillComplete  = errors.New("training drill is already complete")
)

// Policy decides when the drill is finished
type Policy string

const (
	// PolicyOnePass shows every training item once
	PolicyOnePass Policy = "one-pass"
	// PolicyStreak cycles items until enough consecutive defuses
	PolicyStreak Policy = "streak"
)

// ParsePolicy converts a raw string into a Policy
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyOnePass, PolicyStreak:
		return p, nil
	}
	return "", fmt.Errorf("unknown training policy %q", s)
}

// Options configures a drill
type Options struct {
	Policy        Policy
	StreakTarget  int
	BaseTimer     time.Duration
	MinTimer      time.Duration
	TimerStep     time.Duration
	PenaltyRefund time.Duration
}

// DefaultOptions is the one-pass drill with the streak timings preset
var DefaultOptions = Options{
	Policy:        PolicyOnePass,
	StreakTarget:  3,
	BaseTimer:     20 * time.Second,
	MinTimer:      10 * time.Second,
	TimerStep:     2 * time.Second,
	PenaltyRefund: 2 * time.Second,
}

// Feedback is the coach's verdict on one round
type Feedback struct {
	NotificationID string          `json:"notification_id"`
	Correct        []models.Tactic `json:"correct"`
	Missed         []models.Tactic `json:"missed"`
	Extra          []models.Tactic `json:"extra"`
	Explanation    string          `json:"explanation"`
	Defused        bool            `json:"defused"`
	TimedOut       bool            `json:"timed_out"`
	Streak         int             `json:"streak"`
	Complete       bool            `json:"complete"`
}

// Progress describes where the drill stands
type Progress struct {
	Policy    Policy `json:"policy"`
	Round     int    `json:"round"`
	Items     int    `json:"items"`
	Streak    int    `json:"streak"`
	TimeLimit int64  `json:"time_limit_ms,omitempty"`
	Complete  bool   `json:"complete"`
}

// Drill walks the learner through the fraudulent exposure items and
// accumulates the tactics they have been trained against
type Drill struct {
	opts      Options
	items     []models.Notification
	round     int
	streak    int
	timeLimit time.Duration
	trained   []models.Tactic
	complete  bool
}

// NewDrill creates a drill. With no items it is complete from the start.
func NewDrill(items []models.Notification, opts Options) *Drill {
	if opts.Policy == "" {
		opts.Policy = PolicyOnePass
	}
	if opts.StreakTarget <= 0 {
		opts.StreakTarget = DefaultOptions.StreakTarget
	}
	if opts.MinTimer > opts.BaseTimer {
		opts.MinTimer = opts.BaseTimer
	}

	d := &Drill{
		opts:     opts,
		items:    slices.Clone(items),
		trained:  []models.Tactic{},
		complete: len(items) == 0,
	}
	d.timeLimit = d.limitFor(0)
	return d
}

// Current returns the item of the running round
func (d *Drill) Current() (models.Notification, bool) {
	if d.complete {
		return models.Notification{}, false
	}
	return d.items[d.round%len(d.items)], true
}

// Submit evaluates the tactics the learner spotted in the current item
func (d *Drill) Submit(selected []models.Tactic) (Feedback, error) {
	if len(selected) == 0 {
		return Feedback{}, ErrEmptySelection
	}
	for _, t := range selected {
		if !t.Valid() {
			return Feedback{}, fmt.Errorf("unknown tactic %q", t)
		}
	}
	return d.play(scoring.Aggregate(selected), false)
}

// Timeout ends the current round with nothing identified
func (d *Drill) Timeout() (Feedback, error) {
	return d.play(nil, true)
}

func (d *Drill) play(selected []models.Tactic, timedOut bool) (Feedback, error) {
	item, ok := d.Current()
	if !ok {
		return Feedback{}, ErrDrillComplete
	}

	fb := analyze(item, selected)
	fb.TimedOut = timedOut

	switch d.opts.Policy {
	case PolicyStreak:
		d.playStreak(item, &fb)
	default:
		d.trained = scoring.Aggregate(d.trained, item.Tactics)
		fb.Defused = !timedOut && len(fb.Correct) > 0
		d.round++
		d.complete = d.round >= len(d.items)
	}

	fb.Streak = d.streak
	fb.Complete = d.complete
	return fb, nil
}

func (d *Drill) playStreak(item models.Notification, fb *Feedback) {
	switch {
	case fb.TimedOut:
		d.streak = 0
		d.nextRound()
	case len(fb.Correct) > 0:
		fb.Defused = true
		d.streak++
		d.trained = scoring.Aggregate(d.trained, item.Tactics)
		if d.streak >= d.opts.StreakTarget {
			d.complete = true
			return
		}
		d.nextRound()
	default:
		// Wrong pick: same round, a little time back.
		d.timeLimit = min(d.timeLimit+d.opts.PenaltyRefund, d.opts.BaseTimer)
	}
}

func (d *Drill) nextRound() {
	d.round++
	d.timeLimit = d.limitFor(d.streak)
}

func (d *Drill) limitFor(streak int) time.Duration {
	if d.opts.Policy != PolicyStreak {
		return 0
	}
	return max(d.opts.MinTimer, d.opts.BaseTimer-time.Duration(streak)*d.opts.TimerStep)
}

func analyze(item models.Notification, selected []models.Tactic) Feedback {
	fb := Feedback{
		NotificationID: item.ID,
		Correct:        []models.Tactic{},
		Missed:         []models.Tactic{},
		Extra:          []models.Tactic{},
		Explanation:    item.Explanation,
	}
	for _, t := range selected {
		if item.HasTactic(t) {
			fb.Correct = append(fb.Correct, t)
		} else {
			fb.Extra = append(fb.Extra, t)
		}
	}
	for _, t := range item.Tactics {
		if !slices.Contains(selected, t) {
			fb.Missed = append(fb.Missed, t)
		}
	}
	return fb
}

// Complete reports whether the drill has finished
func (d *Drill) Complete() bool {
	return d.complete
}

// Trained returns the tactics trained so far in first-seen order
func (d *Drill) Trained() []models.Tactic {
	return slices.Clone(d.trained)
}

// Progress reports the round, streak and time limit
func (d *Drill) Progress() Progress {
	return Progress{
		Policy:    d.opts.Policy,
		Round:     d.round,
		Items:     len(d.items),
		Streak:    d.streak,
		TimeLimit: d.timeLimit.Milliseconds(),
		Complete:  d.complete,
	}
}
