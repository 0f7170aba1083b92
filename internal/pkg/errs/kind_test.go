//go:build unit

package errs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

func TestKindOf(t *testing.T) {
	plain := errs.New("boom")

	testCases := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{"unclassified error defaults to internal", plain, errs.KindInternalError},
		{"business error", errs.Classify(errs.KindBusinessError, plain), errs.KindBusinessError},
		{"service unavailable", errs.Classify(errs.KindServiceUnavailable, plain), errs.KindServiceUnavailable},
		{"unclear remote outcome", errs.Classify(errs.KindUnclearRemoteOutcome, plain), errs.KindUnclearRemoteOutcome},
		{"wrapped classified error is still found", errs.Wrap(errs.Classify(errs.KindBusinessError, plain), "context"), errs.KindBusinessError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errs.KindOf(tc.err))
		})
	}
}

func TestClassifiedUnwrap(t *testing.T) {
	cause := errs.New("root cause")
	classified := errs.Classify(errs.KindBusinessError, cause)

	assert.True(t, errs.Is(classified, cause))
	assert.Equal(t, cause.Error(), classified.Error())
}
