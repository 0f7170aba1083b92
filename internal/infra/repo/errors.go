package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

// Kind classifies a failure coming out of the persistence layer, independent
// of which table or repository produced it.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindDuplicateKey         Kind = "duplicate_key"
	KindForeignKeyViolated   Kind = "foreign_key_violated"
	KindInsufficientQuantity Kind = "insufficient_quantity" // not produced by Decrement, which reports a failed guard as (false, nil)
	KindDBFailure            Kind = "db_failure"
)

// Postgres SQLSTATE codes this package distinguishes on.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

var errNoSuchAvailabilityRow = errors.New("no room_availability row for room/date")

type RepositoryError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *RepositoryError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + string(e.Kind)
	}
	return e.Op + ": " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// WrapRepoErr classifies a raw pgx/pgconn error into a *RepositoryError
// tagged with the operation that produced it. A nil err returns nil.
func WrapRepoErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &RepositoryError{Kind: KindNotFound, Op: op, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			return &RepositoryError{Kind: KindDuplicateKey, Op: op, Err: err}
		case sqlStateForeignKeyViolation:
			return &RepositoryError{Kind: KindForeignKeyViolated, Op: op, Err: err}
		}
	}

	return &RepositoryError{Kind: KindDBFailure, Op: op, Err: errs.Mark(errs.Wrap(err, op), errs.ErrDatabaseOperationFailed)}
}

// IsKind reports whether err is a *RepositoryError of the given Kind.
func IsKind(err error, kind Kind) bool {
	var re *RepositoryError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
