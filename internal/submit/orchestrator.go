package submit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"review-core/internal/manifest"
	"review-core/pkg/errno"
	"review-core/pkg/logger"
	"review-core/pkg/monitor"
)

// Orchestrator drives one review's sign → submit → poll lifecycle. A
// single instance owns the submission state for its review; nothing else
// mutates it.
type Orchestrator struct {
	signer   Signer
	client   SubmitClient
	strategy PollStrategy

	mu    sync.Mutex
	state State
	// gen invalidates the running attempt: Cancel bumps it, after which
	// the stale goroutine's transitions are discarded.
	gen    uint64
	cancel context.CancelFunc

	observers []func(State)
}

func NewOrchestrator(signer Signer, client SubmitClient, strategy PollStrategy) *Orchestrator {
	if strategy.Interval <= 0 {
		strategy.Interval = 2 * time.Second
	}
	if strategy.MaxTries <= 0 {
		strategy.MaxTries = 20
	}
	return &Orchestrator{
		signer:   signer,
		client:   client,
		strategy: strategy,
		state:    State{Phase: PhaseNotStarted},
	}
}

// State returns the current observable state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// OnChange registers a state observer. Observers run asynchronously,
// outside the lock.
func (o *Orchestrator) OnChange(fn func(State)) {
	o.mu.Lock()
	o.observers = append(o.observers, fn)
	o.mu.Unlock()
}

// Approve starts the submission of the final manifest. At most one
// submission may be in flight per review: a second call while in
// Signing/Submitting/Polling is rejected without touching state, never
// queued. A review that already reached a terminal phase cannot be
// re-approved through the same orchestrator.
func (o *Orchestrator) Approve(ctx context.Context, m manifest.Manifest, header Header) error {
	o.mu.Lock()
	if o.state.Phase.InFlight() {
		o.mu.Unlock()
		return errno.ErrSubmissionInFlight
	}
	if o.state.Phase.Terminal() {
		o.mu.Unlock()
		return errno.ErrSubmissionInFlight
	}

	// The attempt outlives the approving caller: a request-scoped context
	// dies as soon as its handler returns, while sign/submit/poll keeps
	// running. Only Cancel ends the attempt early.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancel = cancel
	o.gen++
	gen := o.gen
	o.setStateLocked(State{Phase: PhaseSigning})
	o.mu.Unlock()

	go o.run(runCtx, gen, m, header)
	return nil
}

// Cancel aborts whatever local wait is active and reports what that
// amounts to. Before Submitting the cancellation is clean; at or after
// Submitting the transaction may still land on the ledger — the outcome
// must never be presented as a definite cancellation.
func (o *Orchestrator) Cancel() CancelOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state.Phase {
	case PhaseSigning:
		o.abortLocked()
		o.setStateLocked(State{Phase: PhaseNotStarted})
		return CancelClean

	case PhaseSubmitting:
		o.abortLocked()
		o.setStateLocked(State{Phase: PhaseNotStarted})
		return CancelDetached

	case PhasePolling:
		// The transaction is on the network; it is never rolled back.
		// Stop watching and say so.
		o.abortLocked()
		s := o.state
		s.WatchAbandoned = true
		o.setStateLocked(s)
		return CancelWatchStopped

	default:
		return CancelNoop
	}
}

func (o *Orchestrator) abortLocked() {
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// transition applies the new state unless the attempt was invalidated by
// Cancel in the meantime.
func (o *Orchestrator) transition(gen uint64, s State) bool {
	o.mu.Lock()
	if o.gen != gen {
		o.mu.Unlock()
		return false
	}
	o.setStateLocked(s)
	o.mu.Unlock()
	return true
}

func (o *Orchestrator) setStateLocked(s State) {
	o.state = s
	observers := make([]func(State), len(o.observers))
	copy(observers, o.observers)

	go func() {
		for _, fn := range observers {
			fn(s)
		}
	}()
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, m manifest.Manifest, header Header) {
	payload, err := o.signer.Sign(ctx, m, header)
	if err != nil {
		// Signing failures end this attempt but are retryable: fresh
		// user interaction (biometrics, hardware device) may succeed, so
		// the machine returns to NotStarted instead of parking in Failed.
		logger.Warn("signing failed", zap.Error(err))
		o.transition(gen, State{Phase: PhaseNotStarted, FailureReason: errno.ErrSigningFailed.Message, OutcomeKnown: true})
		return
	}

	if !o.transition(gen, State{Phase: PhaseSubmitting, IntentID: payload.IntentID}) {
		return
	}

	result, err := o.client.Submit(ctx, payload)
	if err != nil {
		// A transport error during submit leaves the outcome unknown:
		// the gateway may or may not have accepted the payload.
		o.terminal(gen, State{
			Phase:         PhaseFailed,
			IntentID:      payload.IntentID,
			FailureReason: err.Error(),
			OutcomeKnown:  false,
		})
		return
	}
	if result.Duplicate || result.Rejected {
		reason := result.Reason
		if reason == "" && result.Duplicate {
			reason = errno.ErrSubmitDuplicate.Message
		}
		o.terminal(gen, State{
			Phase:         PhaseRejected,
			IntentID:      payload.IntentID,
			FailureReason: reason,
			OutcomeKnown:  true,
		})
		return
	}

	if !o.transition(gen, State{Phase: PhasePolling, IntentID: payload.IntentID}) {
		return
	}

	o.poll(ctx, gen, payload.IntentID)
}

// poll watches the intent until a terminal status or the poll budget runs
// out. One observation per tick, never overlapping: the ticker drops
// ticks while a request is still on the wire.
func (o *Orchestrator) poll(ctx context.Context, gen uint64, intentID string) {
	started := time.Now()
	ticker := time.NewTicker(o.strategy.Interval)
	defer ticker.Stop()

	tries := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		tries++
		status, err := o.client.PollStatus(ctx, intentID)
		if err != nil {
			logger.Warn("status poll failed", zap.String("intent", intentID), zap.Error(err))
		} else {
			switch {
			case status.Committed:
				if monitor.Business != nil {
					monitor.Business.PollDuration.Observe(time.Since(started).Seconds())
				}
				o.terminal(gen, State{
					Phase:        PhaseCommitted,
					IntentID:     intentID,
					TxID:         status.TxID,
					OutcomeKnown: true,
				})
				return
			case status.PermanentFailure:
				o.terminal(gen, State{
					Phase:         PhaseFailed,
					IntentID:      intentID,
					FailureReason: status.Reason,
					OutcomeKnown:  true,
				})
				return
			}
		}

		if tries >= o.strategy.MaxTries {
			o.terminal(gen, State{
				Phase:         PhaseFailed,
				IntentID:      intentID,
				FailureReason: fmt.Sprintf("%s (%d attempts)", errno.ErrOutcomeUnknown.Message, tries),
				OutcomeKnown:  false,
			})
			return
		}
	}
}

func (o *Orchestrator) terminal(gen uint64, s State) {
	if o.transition(gen, s) && monitor.Business != nil {
		monitor.Business.SubmissionTotal.WithLabelValues(string(s.Phase)).Inc()
	}
}
