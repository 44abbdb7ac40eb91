package models

// VisibleRequest reports that an item appeared on screen
type VisibleRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
	TimestampMs    *int64 `json:"timestamp_ms,omitempty"`
}

// InteractionRequest records an exposure action
type InteractionRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
	Action         string `json:"action" binding:"required,oneof=opened ignored timed-out"`
	TimestampMs    *int64 `json:"timestamp_ms,omitempty"`
}

// TacticsRequest submits the tactics spotted in a training item
type TacticsRequest struct {
	Tactics     []string `json:"tactics"`
	TimestampMs *int64   `json:"timestamp_ms,omitempty"`
}

// TimestampRequest carries only the optional client timestamp
type TimestampRequest struct {
	TimestampMs *int64 `json:"timestamp_ms,omitempty"`
}

// AnswerRequest submits a verdict on a test item
type AnswerRequest struct {
	NotificationID    string `json:"notification_id" binding:"required"`
	Decision          string `json:"decision" binding:"required,oneof=safe fraudulent"`
	ConfidencePercent *int   `json:"confidence_percent" binding:"required,min=0,max=100"`
	ReasoningText     string `json:"reasoning_text,omitempty"`
	TimestampMs       *int64 `json:"timestamp_ms,omitempty"`
}
