package errs

// Kind classifies an error by how a caller should react to it, rather than
// by its concrete type. Every error surfaced across a saga step boundary
// carries one of these.
type Kind int

const (
	// KindBusinessError is a definite, final rejection: the request itself
	// is invalid or cannot succeed (insufficient availability, payment
	// declined, invalid state transition). Safe to compensate.
	KindBusinessError Kind = iota
	// KindServiceUnavailable is a transient failure the caller can retry
	// (connection refused, remote 5xx that is known to have not applied
	// its effect).
	KindServiceUnavailable
	// KindUnclearRemoteOutcome means the remote call may or may not have
	// applied its effect (timeout, reset, 503/504 with no applied/not
	// confirmation). It must never be treated as a clear failure: no
	// compensation may run against it.
	KindUnclearRemoteOutcome
	// KindPendingUnclear is the saga-level result of an unclear step: the
	// booking is left in place, awaiting recovery, and the caller gets an
	// Accepted response rather than a failure.
	KindPendingUnclear
	// KindInternalError is a bug or invariant violation, not a business or
	// network condition.
	KindInternalError
)

func (k Kind) String() string {
	switch k {
	case KindBusinessError:
		return "business_error"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindUnclearRemoteOutcome:
		return "unclear_remote_outcome"
	case KindPendingUnclear:
		return "pending_unclear"
	case KindInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Classified wraps an error with its Kind so callers can branch on
// classification instead of re-deriving it from the error's shape.
type Classified struct {
	Kind Kind
	Err  error
}

func (c *Classified) Error() string {
	if c.Err == nil {
		return "classified error with no cause"
	}
	return c.Err.Error()
}

func (c *Classified) Unwrap() error {
	return c.Err
}

func Classify(kind Kind, err error) *Classified {
	return &Classified{Kind: kind, Err: err}
}

// KindOf extracts the Kind from an error if it (or something it wraps) is a
// *Classified, defaulting to KindInternalError otherwise.
func KindOf(err error) Kind {
	var c *Classified
	if As(err, &c) {
		return c.Kind
	}
	return KindInternalError
}
