package event

// Topics for submission lifecycle events.
const (
	TopicSubmissionTerminal = "review_events_submission"
)

// SubmissionTerminalEvent is published when a submission reaches a
// terminal phase (committed, rejected, failed). Key the message by
// session id so per-review ordering holds on partitioned transports.
type SubmissionTerminalEvent struct {
	SessionID     string `json:"session_id"`
	IntentID      string `json:"intent_id,omitempty"`
	TxID          string `json:"tx_id,omitempty"`
	Phase         string `json:"phase"`
	FailureReason string `json:"failure_reason,omitempty"`
	OutcomeKnown  bool   `json:"outcome_known"`
	NetworkID     uint8  `json:"network_id"`
}
