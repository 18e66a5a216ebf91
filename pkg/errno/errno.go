package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno. Call sites wrap with
// fmt.Errorf("%w"), so the chain is unwrapped rather than type-switched.
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var e Errno
	if errors.As(err, &e) {
		return e.Code, e.Message
	}
	var ep *Errno
	if errors.As(err, &ep) {
		return ep.Code, ep.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Review Errors (20100+)
var (
	ErrSessionNotFound     = Errno{Code: 20101, Message: "Review session not found"}
	ErrPreviewFailed       = Errno{Code: 20102, Message: "Transaction preview failed"}
	ErrReviewNotReady      = Errno{Code: 20103, Message: "Review summary is not ready yet"}
	ErrTransferNotFound    = Errno{Code: 20104, Message: "Transfer not found in review"}
	ErrNotGuaranteed       = Errno{Code: 20105, Message: "Transfer carries no guarantee"}
	ErrGuaranteeOutOfBound = Errno{Code: 20106, Message: "Guarantee percentage must be in (0, 100]"}
)

// Submission Errors (20200+)
var (
	ErrSubmissionInFlight = Errno{Code: 20201, Message: "A submission is already in flight for this review"}
	ErrSigningFailed      = Errno{Code: 20202, Message: "Signing failed"}
	ErrSubmitRejected     = Errno{Code: 20203, Message: "Transaction was rejected by the network"}
	ErrSubmitDuplicate    = Errno{Code: 20204, Message: "Transaction was a duplicate of an already submitted intent"}
	ErrOutcomeUnknown     = Errno{Code: 20205, Message: "Transaction outcome unknown, status watch gave up"}
)
