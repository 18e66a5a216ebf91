package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"review-core/internal/event"
	"review-core/internal/manifest"
	"review-core/internal/model"
	"review-core/internal/review"
	"review-core/internal/service/mq"
	"review-core/internal/submit"
	"review-core/pkg/errno"
	"review-core/pkg/logger"
)

// ReviewService owns the live review sessions and their side effects:
// the submission audit trail in Postgres and terminal lifecycle events
// on the message queue. Both are optional; a nil db or producer turns
// the side effect off, which is how the CLI runs.
type ReviewService struct {
	deps     review.SessionDeps
	db       *gorm.DB
	producer mq.Producer

	mu       sync.RWMutex
	sessions map[string]*review.Session
}

func NewReviewService(deps review.SessionDeps, db *gorm.DB, producer mq.Producer) *ReviewService {
	return &ReviewService{
		deps:     deps,
		db:       db,
		producer: producer,
		sessions: make(map[string]*review.Session),
	}
}

// StartReview creates a session for the manifest, runs the analysis
// phase, and registers the session for later operations. The returned
// session already has its first snapshot.
func (s *ReviewService) StartReview(ctx context.Context, m manifest.Manifest) (*review.Session, error) {
	session := review.NewSession(m, s.deps)
	if err := session.OnAppear(ctx); err != nil {
		return nil, err
	}

	sessionID := session.ID.String()
	session.OnSubmissionChange(func(st submit.State) {
		s.recordTransition(sessionID, st)
	})

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()

	logger.Info("review session started",
		zap.String("session", sessionID),
		zap.Int("withdrawal_groups", len(session.Snapshot().Withdrawals)),
		zap.Int("deposit_groups", len(session.Snapshot().Deposits)))
	return session, nil
}

// Get returns a registered session.
func (s *ReviewService) Get(sessionID string) (*review.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, errno.ErrSessionNotFound
	}
	return session, nil
}

// EditGuarantee applies a guarantee percentage on one session.
func (s *ReviewService) EditGuarantee(sessionID string, transferID uuid.UUID, percent decimal.Decimal) (*review.Snapshot, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return session.EditGuarantee(transferID, percent)
}

// Approve kicks off the session's submission and opens its audit record.
func (s *ReviewService) Approve(ctx context.Context, sessionID string) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}

	// Open the audit row before the state machine starts so a fast
	// terminal transition always finds it.
	if s.db != nil {
		record := model.SubmissionRecord{
			SessionID: sessionID,
			Phase:     string(submit.PhaseSigning),
			Fee:       session.Snapshot().Fee,
			NetworkID: s.deps.NetworkID,
		}
		if err := s.db.Create(&record).Error; err != nil {
			logger.Error("submission record insert failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	if err := session.Approve(ctx); err != nil {
		if s.db != nil {
			s.db.Where("session_id = ? AND phase = ?", sessionID, string(submit.PhaseSigning)).
				Delete(&model.SubmissionRecord{})
		}
		return err
	}
	return nil
}

// Cancel aborts the session's active submission wait.
func (s *ReviewService) Cancel(sessionID string) (submit.CancelOutcome, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return submit.CancelNoop, err
	}
	return session.Cancel(), nil
}

// Close drops a session from the registry once the caller is done with
// it. Terminal state already reached stays in the audit table.
func (s *ReviewService) Close(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *ReviewService) recordTransition(sessionID string, st submit.State) {
	if s.db != nil {
		updates := map[string]interface{}{
			"phase":          string(st.Phase),
			"intent_id":      st.IntentID,
			"tx_id":          st.TxID,
			"failure_reason": st.FailureReason,
			"outcome_known":  st.OutcomeKnown,
		}
		err := s.db.Model(&model.SubmissionRecord{}).
			Where("session_id = ?", sessionID).
			Updates(updates).Error
		if err != nil {
			logger.Error("submission record update failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	if st.Phase.Terminal() {
		s.publishTerminal(sessionID, st)
	}
}

func (s *ReviewService) publishTerminal(sessionID string, st submit.State) {
	if s.producer == nil {
		return
	}

	payload, err := json.Marshal(event.SubmissionTerminalEvent{
		SessionID:     sessionID,
		IntentID:      st.IntentID,
		TxID:          st.TxID,
		Phase:         string(st.Phase),
		FailureReason: st.FailureReason,
		OutcomeKnown:  st.OutcomeKnown,
		NetworkID:     s.deps.NetworkID,
	})
	if err != nil {
		logger.Error("terminal event marshal failed", zap.Error(err))
		return
	}

	if err := s.producer.Publish(context.Background(), event.TopicSubmissionTerminal, sessionID, payload); err != nil {
		logger.Error("terminal event publish failed", zap.String("session", sessionID), zap.Error(err))
	}
}
