package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"review-core/internal/handler/request"
	"review-core/internal/handler/response"
	"review-core/internal/manifest"
	"review-core/internal/service"
	"review-core/pkg/errno"
)

// ReviewHandler exposes the review session flow over HTTP.
type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Start opens a review session and returns its first snapshot.
func (h *ReviewHandler) Start(c *gin.Context) {
	var req request.StartReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	session, err := h.reviews.StartReview(c.Request.Context(), manifest.Parse(req.Manifest))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"session_id": session.ID.String(),
		"snapshot":   session.Snapshot(),
	})
}

// Snapshot returns the current review snapshot.
func (h *ReviewHandler) Snapshot(c *gin.Context) {
	session, err := h.reviews.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	snapshot := session.Snapshot()
	if snapshot == nil {
		response.Error(c, errno.ErrReviewNotReady)
		return
	}
	response.Success(c, snapshot)
}

// EditGuarantee applies a guarantee percentage and returns the
// superseding snapshot.
func (h *ReviewHandler) EditGuarantee(c *gin.Context) {
	var req request.EditGuaranteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	transferID, err := uuid.Parse(req.TransferID)
	if err != nil {
		response.Error(c, errno.ErrTransferNotFound)
		return
	}
	percent, err := decimal.NewFromString(req.Percent)
	if err != nil {
		response.Error(c, errno.ErrGuaranteeOutOfBound)
		return
	}

	snapshot, err := h.reviews.EditGuarantee(c.Param("id"), transferID, percent)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snapshot)
}

// Approve starts the submission for a session.
func (h *ReviewHandler) Approve(c *gin.Context) {
	if err := h.reviews.Approve(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.reviews.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session.SubmissionState())
}

// Cancel aborts the session's active submission wait.
func (h *ReviewHandler) Cancel(c *gin.Context) {
	outcome, err := h.reviews.Cancel(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.reviews.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"outcome": outcome,
		"state":   session.SubmissionState(),
	})
}

// SubmissionState returns the session's observable submission state.
func (h *ReviewHandler) SubmissionState(c *gin.Context) {
	session, err := h.reviews.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session.SubmissionState())
}

// RawTransaction returns the final manifest text that would be signed.
func (h *ReviewHandler) RawTransaction(c *gin.Context) {
	session, err := h.reviews.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	raw, err := session.RawTransaction()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"raw": raw})
}

// Close drops a finished session from the registry.
func (h *ReviewHandler) Close(c *gin.Context) {
	if _, err := h.reviews.Get(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.reviews.Close(c.Param("id"))
	response.Success(c, nil)
}
