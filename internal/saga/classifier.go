package saga

import "github.com/lodgeworks/booking-saga/internal/pkg/errs"

// Failure is the two-way split the orchestrator's compensation decision
// turns on. Only a definite business rejection is Clear; everything else
// (ServiceUnavailable included) is folded into Unclear because
// compensating on an unconfirmed outcome risks releasing inventory out
// from under a charge that may have already succeeded.
type Failure int

const (
	FailureClear Failure = iota
	FailureUnclear
)

func ClassifyFailure(err error) Failure {
	if errs.KindOf(err) == errs.KindBusinessError {
		return FailureClear
	}
	return FailureUnclear
}
