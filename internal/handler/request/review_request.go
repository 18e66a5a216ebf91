package request

// StartReviewRequest opens a review for a manifest in its textual form.
type StartReviewRequest struct {
	Manifest string `json:"manifest" binding:"required"`
}

// EditGuaranteeRequest sets the minimum-accepted percentage for one
// estimated deposit transfer.
type EditGuaranteeRequest struct {
	TransferID string `json:"transfer_id" binding:"required"`
	Percent    string `json:"percent" binding:"required"`
}
