package models

import "fmt"

// Channel is the medium a simulated notification arrives through
type Channel string

const (
	ChannelChat        Channel = "chat-message"
	ChannelText        Channel = "text-message"
	ChannelEmail       Channel = "email"
	ChannelSystemAlert Channel = "system-alert"
	ChannelVoiceCall   Channel = "voice-call"
)

// Valid reports whether c is one of the known channels
func (c Channel) Valid() bool {
	switch c {
	case ChannelChat, ChannelText, ChannelEmail, ChannelSystemAlert, ChannelVoiceCall:
		return true
	}
	return false
}

// Tactic is a manipulation technique a fraudulent message relies on
type Tactic string

const (
	Urgency         Tactic = "urgency"
	Authority       Tactic = "authority"
	EmotionalAppeal Tactic = "emotional-appeal"
	FakeLink        Tactic = "fake-link"
	Impersonation   Tactic = "impersonation"
	Reward          Tactic = "reward"
	Threat          Tactic = "threat"
)

// AllTactics lists the tactics in legend order
var AllTactics = []Tactic{
	Urgency,
	Authority,
	EmotionalAppeal,
	FakeLink,
	Impersonation,
	Reward,
	Threat,
}

// TacticInfo is the legend entry shown next to a tactic
type TacticInfo struct {
	Tactic      Tactic `json:"tactic" yaml:"tactic"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// TacticNames maps tactics to their display names
var TacticNames = map[Tactic]string{
	Urgency:         "Urgency",
	Authority:       "Authority",
	EmotionalAppeal: "Emotional Appeal",
	FakeLink:        "Fake Link",
	Impersonation:   "Impersonation",
	Reward:          "Too-Good Reward",
	Threat:          "Threat",
}

// Valid reports whether t is one of the known tactics
func (t Tactic) Valid() bool {
	_, ok := TacticNames[t]
	return ok
}

// ParseTactic converts a raw string into a Tactic
func ParseTactic(s string) (Tactic, error) {
	t := Tactic(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tactic %q", s)
	}
	return t, nil
}

// Notification is an immutable catalog record
type Notification struct {
	ID             string   `json:"id" yaml:"id"`
	Channel        Channel  `json:"channel" yaml:"channel"`
	Sender         string   `json:"sender" yaml:"sender"`
	PreviewText    string   `json:"preview_text" yaml:"preview"`
	FullText       string   `json:"full_text" yaml:"full_text"`
	TimestampLabel string   `json:"timestamp_label" yaml:"timestamp"`
	IsFraudulent   bool     `json:"is_fraudulent" yaml:"fraudulent"`
	Tactics        []Tactic `json:"tactics" yaml:"tactics"`
	Explanation    string   `json:"explanation" yaml:"explanation"`
	VoiceScript    string   `json:"voice_script,omitempty" yaml:"voice_script,omitempty"` // voice-call items only
}

// HasTactic reports whether the notification is tagged with t
func (n Notification) HasTactic(t Tactic) bool {
	for _, own := range n.Tactics {
		if own == t {
			return true
		}
	}
	return false
}
