package session

import (
	"slices"

	"discernment-trainer/internal/models"
)

// Phase is one screen of the training flow
type Phase string

const (
	PhaseLanding         Phase = "landing"
	PhaseExposure        Phase = "exposure"
	PhaseExposureDebrief Phase = "exposure-debrief"
	PhaseSkillsTraining  Phase = "skills-training"
	PhaseAdaptiveTest    Phase = "adaptive-test"
	PhaseResults         Phase = "results"
)

// Phases lists the phases in flow order
var Phases = []Phase{
	PhaseLanding,
	PhaseExposure,
	PhaseExposureDebrief,
	PhaseSkillsTraining,
	PhaseAdaptiveTest,
	PhaseResults,
}

// EventKind identifies what happened
type EventKind string

const (
	EventStart            EventKind = "start"
	EventExposureComplete EventKind = "exposure-complete"
	EventContinue         EventKind = "continue"
	EventTrainingComplete EventKind = "training-complete"
	EventTestComplete     EventKind = "test-complete"
	EventRestart          EventKind = "restart"
)

// Event is a trigger for a phase transition; only the payload matching Kind is read
type Event struct {
	Kind         EventKind
	Interactions []models.Interaction
	Tactics      []models.Tactic
	Answers      []models.Answer
}

// State is everything the flow carries between phases
type State struct {
	Phase          Phase                `json:"phase"`
	Interactions   []models.Interaction `json:"interactions"`
	TrainedTactics []models.Tactic      `json:"trained_tactics"`
	Answers        []models.Answer      `json:"answers"`
}

// Initial is the state of a fresh session
func Initial() State {
	return State{
		Phase:          PhaseLanding,
		Interactions:   []models.Interaction{},
		TrainedTactics: []models.Tactic{},
		Answers:        []models.Answer{},
	}
}

// source is the only phase each event may leave from
var source = map[EventKind]Phase{
	EventStart:            PhaseLanding,
	EventExposureComplete: PhaseExposure,
	EventContinue:         PhaseExposureDebrief,
	EventTrainingComplete: PhaseSkillsTraining,
	EventTestComplete:     PhaseAdaptiveTest,
}

// Transition applies an event and returns the next state.
// The input is never modified. An event that does not fit the current
// phase returns the input unchanged and false.
func Transition(s State, e Event) (State, bool) {
	if e.Kind == EventRestart {
		return Initial(), true
	}

	from, ok := source[e.Kind]
	if !ok || s.Phase != from {
		return s, false
	}

	next := s.Clone()
	switch e.Kind {
	case EventStart:
		next.Phase = PhaseExposure
	case EventExposureComplete:
		next.Interactions = nonNil(e.Interactions)
		next.Phase = PhaseExposureDebrief
	case EventContinue:
		next.Phase = PhaseSkillsTraining
	case EventTrainingComplete:
		next.TrainedTactics = nonNil(e.Tactics)
		next.Phase = PhaseAdaptiveTest
	case EventTestComplete:
		next.Answers = nonNil(e.Answers)
		next.Phase = PhaseResults
	}
	return next, true
}

// Clone returns a deep copy of the state
func (s State) Clone() State {
	return State{
		Phase:          s.Phase,
		Interactions:   nonNil(s.Interactions),
		TrainedTactics: nonNil(s.TrainedTactics),
		Answers:        nonNil(s.Answers),
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
