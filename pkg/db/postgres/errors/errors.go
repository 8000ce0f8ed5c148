package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	ddb "github.com/dstackai/dstack/pkg/db"
)

// requested record is missing.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return ddb.ErrMissing
}

// a record with the same identity already exists.
type AlreadyExists struct {
	Table    string
	Identity string
}

var _ error = AlreadyExists{}

func (a AlreadyExists) Error() string {
	return fmt.Sprintf("%s already exists in %s", a.Identity, a.Table)
}

func (a AlreadyExists) Unwrap() error {
	return ddb.ErrAlreadyExists
}

// IsUniqueViolation tests whether err is a postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation tests whether err is a postgres foreign key
// constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
