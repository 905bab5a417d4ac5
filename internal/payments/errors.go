package payments

import (
	"errors"
	"fmt"
)

type VerificationReason string

const (
	ReasonInvalidSignature VerificationReason = "invalid_signature"
	ReasonNotApproved      VerificationReason = "not_approved"
	ReasonMalformedPayload VerificationReason = "malformed_payload"
)

// VerificationError rejects a confirmation outright: nothing is materialized
// and the response is non-2xx.
type VerificationError struct {
	Reason VerificationReason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verification failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("verification failed (%s)", e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// ErrRetryableStorage marks a materialization failure the provider should
// redeliver: the insert either fully succeeded or fully failed, so a retry
// is safe.
var ErrRetryableStorage = errors.New("retryable storage failure")
