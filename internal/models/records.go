package models

import "fmt"

// Action is what a learner did with an exposure notification
type Action string

const (
	ActionOpened  Action = "opened"
	ActionIgnored Action = "ignored"
	// ActionTimedOut is accepted as input only; it is recorded as ActionIgnored
	ActionTimedOut Action = "timed-out"
)

// ParseAction converts a raw string into an Action
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionOpened, ActionIgnored, ActionTimedOut:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Negative reports whether the action counts as not engaging with the item
func (a Action) Negative() bool {
	return a == ActionIgnored || a == ActionTimedOut
}

// Decision is the learner's verdict on a test notification
type Decision string

const (
	DecisionSafe       Decision = "safe"
	DecisionFraudulent Decision = "fraudulent"
)

// Interaction is the terminal record of one exposure notification
type Interaction struct {
	NotificationID string `json:"notification_id"`
	Action         Action `json:"action"`
	ReactionTimeMs int64  `json:"reaction_time_ms"`
	CreatedAtMs    int64  `json:"created_at_ms"`
}

// Answer is an immutable verdict on one test notification
type Answer struct {
	NotificationID    string   `json:"notification_id"`
	Decision          Decision `json:"decision"`
	ConfidencePercent int      `json:"confidence_percent"`
	ReasoningText     string   `json:"reasoning_text,omitempty"`
	IsCorrect         bool     `json:"is_correct"`
	TimeTakenMs       int64    `json:"time_taken_ms"`
}
