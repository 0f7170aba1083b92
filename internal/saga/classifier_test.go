//go:build unit

package saga_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
	"github.com/lodgeworks/booking-saga/internal/saga"
)

func TestClassifyFailure(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want saga.Failure
	}{
		{
			name: "business error is clear",
			err:  errs.Classify(errs.KindBusinessError, errs.ErrInsufficientAvailability),
			want: saga.FailureClear,
		},
		{
			name: "service unavailable is unclear",
			err:  errs.Classify(errs.KindServiceUnavailable, errs.New("connection refused")),
			want: saga.FailureUnclear,
		},
		{
			name: "unclear remote outcome is unclear",
			err:  errs.Classify(errs.KindUnclearRemoteOutcome, context.DeadlineExceeded),
			want: saga.FailureUnclear,
		},
		{
			name: "unclassified error defaults to unclear",
			err:  errs.New("something went wrong"),
			want: saga.FailureUnclear,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, saga.ClassifyFailure(tc.err))
		})
	}
}
