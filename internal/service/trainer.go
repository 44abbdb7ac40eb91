package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"discernment-trainer/internal/catalog"
	"discernment-trainer/internal/models"
	"discernment-trainer/internal/recorder"
	"discernment-trainer/internal/scoring"
	"discernment-trainer/internal/session"
	"discernment-trainer/internal/training"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPhaseMismatch is returned when an action does not belong to the current phase
var ErrPhaseMismatch = errors.New("action not allowed in the current phase")

// Options configures a Trainer
type Options struct {
	Pacing   recorder.Pacing
	Training training.Options
	Clock    func() time.Time
}

// Trainer owns the single in-memory session and routes every call
// of the presentation contract to the recorders and the phase machine
type Trainer struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	opts    Options
	logger  *zap.Logger

	id       string
	state    session.State
	exposure *recorder.Exposure
	drill    *training.Drill
	test     *recorder.Test
}

// NewTrainer creates a trainer sitting on the landing phase
func NewTrainer(cat *catalog.Catalog, opts Options, logger *zap.Logger) *Trainer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	t := &Trainer{
		catalog: cat,
		opts:    opts,
		logger:  logger,
	}
	t.reset()
	return t
}

func (t *Trainer) reset() {
	t.id = uuid.New().String()
	t.state = session.Initial()
	t.exposure = nil
	t.drill = nil
	t.test = nil
}

// Now returns the trainer's clock reading
func (t *Trainer) Now() time.Time {
	return t.opts.Clock()
}

// apply runs an event through the phase machine and prepares the phase it lands on
func (t *Trainer) apply(e session.Event, at time.Time) bool {
	next, ok := session.Transition(t.state, e)
	if !ok {
		t.logger.Debug("Ignoring out-of-order event",
			zap.String("event", string(e.Kind)),
			zap.String("phase", string(t.state.Phase)))
		return false
	}

	from := t.state.Phase
	t.state = next
	t.logger.Info("Phase changed",
		zap.String("session_id", t.id),
		zap.String("from", string(from)),
		zap.String("to", string(next.Phase)))

	t.enter(next.Phase, at)
	return true
}

func (t *Trainer) enter(phase session.Phase, at time.Time) {
	switch phase {
	case session.PhaseLanding:
		t.reset()
	case session.PhaseExposure:
		t.exposure = recorder.NewExposure(t.catalog.Exposure(), t.opts.Pacing)
	case session.PhaseSkillsTraining:
		t.drill = training.NewDrill(t.catalog.Training(), t.opts.Training)
		if t.drill.Complete() {
			t.apply(session.Event{Kind: session.EventTrainingComplete, Tactics: t.drill.Trained()}, at)
		}
	case session.PhaseAdaptiveTest:
		t.test = recorder.NewTest(t.catalog.Test(), at)
		if t.test.Complete() {
			t.apply(session.Event{Kind: session.EventTestComplete, Answers: t.test.Answers()}, at)
		}
	}
}

func (t *Trainer) require(phase session.Phase) error {
	if t.state.Phase != phase {
		return fmt.Errorf("%w: in %s, need %s", ErrPhaseMismatch, t.state.Phase, phase)
	}
	return nil
}

// Start leaves the landing phase
func (t *Trainer) Start() session.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.apply(session.Event{Kind: session.EventStart}, t.Now())
	return t.state.Phase
}

// Advance continues from the exposure debrief. Every other phase
// moves on through its own completion signal, so Advance is a no-op there.
func (t *Trainer) Advance() session.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.apply(session.Event{Kind: session.EventContinue}, t.Now())
	return t.state.Phase
}

// Restart discards the session and returns to the landing phase
func (t *Trainer) Restart() session.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.apply(session.Event{Kind: session.EventRestart}, t.Now())
	return t.state.Phase
}

// FeedItem is the next notification the exposure feed shows
type FeedItem struct {
	Notification *models.Notification `json:"notification,omitempty"`
	NextDelayMs  int64                `json:"next_delay_ms"`
	Exhausted    bool                 `json:"exhausted"`
}

// NextExposure surfaces the next exposure item as visible at the given time
func (t *Trainer) NextExposure(at time.Time) (FeedItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require(session.PhaseExposure); err != nil {
		return FeedItem{}, err
	}
	n, ok := t.exposure.Next(at)
	if !ok {
		return FeedItem{Exhausted: true}, nil
	}
	return FeedItem{
		Notification: &n,
		NextDelayMs:  t.exposure.NextDelay().Milliseconds(),
	}, nil
}

// MarkVisible notes when an exposure or test item appeared on screen
func (t *Trainer) MarkVisible(id string, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state.Phase {
	case session.PhaseExposure:
		return t.exposure.MarkVisible(id, at)
	case session.PhaseAdaptiveTest:
		return t.test.MarkVisible(id, at)
	}
	return fmt.Errorf("%w: nothing is shown in %s", ErrPhaseMismatch, t.state.Phase)
}

// RecordInteraction stores an exposure action and completes the
// exposure phase once every item has a terminal record
func (t *Trainer) RecordInteraction(id string, action models.Action, at time.Time) (models.Interaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require(session.PhaseExposure); err != nil {
		return models.Interaction{}, err
	}
	rec, err := t.exposure.Record(id, action, at)
	if err != nil {
		t.logger.Warn("Rejected interaction",
			zap.String("notification_id", id),
			zap.String("action", string(action)),
			zap.Error(err))
		return models.Interaction{}, err
	}

	if t.exposure.Complete() {
		t.apply(session.Event{
			Kind:         session.EventExposureComplete,
			Interactions: t.exposure.Interactions(),
		}, at)
	}
	return rec, nil
}

// SubmitTactics hands the learner's tactic picks to the training drill
func (t *Trainer) SubmitTactics(selected []models.Tactic, at time.Time) (training.Feedback, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require(session.PhaseSkillsTraining); err != nil {
		return training.Feedback{}, err
	}
	fb, err := t.drill.Submit(selected)
	if err != nil {
		return training.Feedback{}, err
	}
	t.afterRound(at)
	return fb, nil
}

// TimeoutTraining ends the current training round as a miss
func (t *Trainer) TimeoutTraining(at time.Time) (training.Feedback, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require(session.PhaseSkillsTraining); err != nil {
		return training.Feedback{}, err
	}
	fb, err := t.drill.Timeout()
	if err != nil {
		return training.Feedback{}, err
	}
	t.afterRound(at)
	return fb, nil
}

func (t *Trainer) afterRound(at time.Time) {
	if t.drill.Complete() {
		t.apply(session.Event{Kind: session.EventTrainingComplete, Tactics: t.drill.Trained()}, at)
	}
}

// RecordAnswer scores a test answer and completes the test once every item is answered
func (t *Trainer) RecordAnswer(id string, decision models.Decision, confidence int, reasoning string, at time.Time) (models.Answer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.require(session.PhaseAdaptiveTest); err != nil {
		return models.Answer{}, err
	}
	answer, err := t.test.Record(id, decision, confidence, reasoning, at)
	if err != nil {
		t.logger.Warn("Rejected answer",
			zap.String("notification_id", id),
			zap.Error(err))
		return models.Answer{}, err
	}

	if t.test.Complete() {
		t.apply(session.Event{Kind: session.EventTestComplete, Answers: t.test.Answers()}, at)
	}
	return answer, nil
}

// Phase returns the current phase
func (t *Trainer) Phase() session.Phase {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state.Phase
}

// ExposureProgress is the live view of the exposure feed
type ExposureProgress struct {
	Recorded    int `json:"recorded"`
	Total       int `json:"total"`
	ScamsOpened int `json:"scams_opened"`
}

// TestProgress is the live view of the test
type TestProgress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Snapshot is the full session as seen by the presentation layer
type Snapshot struct {
	SessionID        string               `json:"session_id"`
	State            session.State        `json:"state"`
	ExposureComplete bool                 `json:"exposure_complete"`
	TrainingComplete bool                 `json:"training_complete"`
	TestComplete     bool                 `json:"test_complete"`
	Exposure         *ExposureProgress    `json:"exposure,omitempty"`
	Training         *training.Progress   `json:"training,omitempty"`
	TrainingItem     *models.Notification `json:"training_item,omitempty"`
	Test             *TestProgress        `json:"test,omitempty"`
	TestItem         *models.Notification `json:"test_item,omitempty"`
}

// Snapshot returns a copy of the session and the progress of the running phase
func (t *Trainer) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos := slices.Index(session.Phases, t.state.Phase)
	snap := Snapshot{
		SessionID:        t.id,
		State:            t.state.Clone(),
		ExposureComplete: pos > slices.Index(session.Phases, session.PhaseExposure),
		TrainingComplete: pos > slices.Index(session.Phases, session.PhaseSkillsTraining),
		TestComplete:     pos > slices.Index(session.Phases, session.PhaseAdaptiveTest),
	}

	switch t.state.Phase {
	case session.PhaseExposure:
		recorded, total := t.exposure.Progress()
		live := scoring.CountExposure(t.exposure.Interactions(), t.catalog.Exposure())
		snap.Exposure = &ExposureProgress{Recorded: recorded, Total: total, ScamsOpened: live.ScamsOpened}
	case session.PhaseSkillsTraining:
		p := t.drill.Progress()
		snap.Training = &p
		if n, ok := t.drill.Current(); ok {
			snap.TrainingItem = &n
		}
	case session.PhaseAdaptiveTest:
		answered, total := t.test.Progress()
		snap.Test = &TestProgress{Answered: answered, Total: total}
		if n, ok := t.test.Current(); ok {
			snap.TestItem = &n
		}
	}
	return snap
}

// Report derives the score report from what the session has accumulated so far
func (t *Trainer) Report() scoring.Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	return scoring.BuildReport(scoring.Inputs{
		Interactions:   t.state.Interactions,
		ExposureItems:  t.catalog.Exposure(),
		TrainedTactics: t.state.TrainedTactics,
		Answers:        t.state.Answers,
		Lookup:         t.catalog,
	})
}

// SessionID identifies the current run; it changes on every restart
func (t *Trainer) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.id
}

// CatalogSlice returns the notifications of the named set
func (t *Trainer) CatalogSlice(set catalog.Set) ([]models.Notification, error) {
	return t.catalog.Slice(set)
}

// Tactics returns the tactic legend
func (t *Trainer) Tactics() []models.TacticInfo {
	return t.catalog.Tactics()
}
