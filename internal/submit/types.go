package submit

import (
	"context"
	"time"

	"review-core/internal/manifest"
)

// Phase is the submission lifecycle position.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseSigning    Phase = "signing"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
	PhaseCommitted  Phase = "committed"
	PhaseRejected   Phase = "rejected"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p == PhaseCommitted || p == PhaseRejected || p == PhaseFailed
}

// InFlight reports whether a submission is between approval and a
// terminal outcome.
func (p Phase) InFlight() bool {
	return p == PhaseSigning || p == PhaseSubmitting || p == PhasePolling
}

// State is the observable submission state. FailureReason is set for
// PhaseFailed; OutcomeKnown separates "definitely not applied" from
// "outcome unknown" — collapsing the two would let a user double-spend or
// give up on a transaction that actually landed.
type State struct {
	Phase         Phase  `json:"phase"`
	IntentID      string `json:"intent_id,omitempty"`
	TxID          string `json:"tx_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	OutcomeKnown  bool   `json:"outcome_known"`
	// WatchAbandoned is set when the user cancelled during polling: the
	// transaction was not retracted, we just stopped watching it.
	WatchAbandoned bool `json:"watch_abandoned,omitempty"`
}

// Header carries the transaction header parameters handed to the signer.
type Header struct {
	NetworkID     uint8  `json:"network_id"`
	Nonce         uint32 `json:"nonce"`
	TipPercentage uint16 `json:"tip_percentage"`
}

// SignedPayload is the notarized, submittable intent.
type SignedPayload struct {
	IntentID string `json:"intent_id"`
	Payload  []byte `json:"payload"`
}

// Signer produces a signed payload for a final manifest. Signing may
// suspend indefinitely on user or hardware interaction; implementations
// must honor ctx cancellation.
type Signer interface {
	Sign(ctx context.Context, m manifest.Manifest, header Header) (*SignedPayload, error)
}

// SubmitResult is the gateway's answer to a submission.
type SubmitResult struct {
	Duplicate bool
	Rejected  bool
	Reason    string
}

// Status is one poll observation.
type Status struct {
	Pending          bool
	Committed        bool
	PermanentFailure bool
	TxID             string
	Reason           string
}

// SubmitClient submits a signed payload and polls its ledger status.
type SubmitClient interface {
	Submit(ctx context.Context, payload *SignedPayload) (*SubmitResult, error)
	PollStatus(ctx context.Context, intentID string) (*Status, error)
}

// PollStrategy bounds the status watch. The budget comes from the
// caller's configuration, not from the orchestrator.
type PollStrategy struct {
	Interval time.Duration
	MaxTries int
}

// CancelOutcome tells the caller what a cancellation actually achieved.
type CancelOutcome string

const (
	// CancelNoop: nothing was in flight.
	CancelNoop CancelOutcome = "noop"
	// CancelClean: no transaction has left the device.
	CancelClean CancelOutcome = "clean"
	// CancelDetached: the local wait was abandoned but the submission may
	// still complete out of band; it was not retracted.
	CancelDetached CancelOutcome = "detached"
	// CancelWatchStopped: the transaction is on the network; only the
	// status watch stopped. Never present this as a cancelled transaction.
	CancelWatchStopped CancelOutcome = "watch_stopped"
)
