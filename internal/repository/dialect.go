package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Dialect captures the handful of places where MySQL and PostgreSQL differ
// for the booking store: placeholder syntax, retrieving generated IDs and
// the meaning of driver error codes.
type Dialect interface {
	// Name returns the database/sql driver name.
	Name() string
	// Rebind rewrites '?' placeholders into the dialect's syntax.
	Rebind(query string) string
	// InsertID runs an INSERT and returns the generated primary key.  The
	// query is written without a RETURNING clause.
	InsertID(ctx context.Context, tx *sql.Tx, query string, args ...any) (uint64, error)
	// Translate maps driver errors onto the package's sentinel errors.
	// Unknown errors are returned unchanged.
	Translate(err error) error
}

// DialectFor returns the Dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		return MySQL{}, nil
	case "postgres", "postgresql":
		return Postgres{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// MySQL is the dialect of the primary deployment.  MySQL has no exclusion
// constraints, so the room row lock taken by WithinRoomTx is what keeps
// concurrent admissions apart.
type MySQL struct{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Rebind(query string) string { return query }

func (MySQL) InsertID(ctx context.Context, tx *sql.Tx, query string, args ...any) (uint64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// MySQL server error numbers handled by Translate.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

func (MySQL) Translate(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case mysqlDeadlock, mysqlLockWaitTimeout:
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return err
}

// Postgres backs the schema with an exclusion constraint on
// (room_id, daterange) for active bookings.
type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

// Rebind turns each '?' into $1, $2, ... in order.  Queries in this
// package never contain literal question marks.
func (Postgres) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (p Postgres) InsertID(ctx context.Context, tx *sql.Tx, query string, args ...any) (uint64, error) {
	var id uint64
	err := tx.QueryRowContext(ctx, p.Rebind(query)+" RETURNING id", args...).Scan(&id)
	return id, err
}

// PostgreSQL SQLSTATE codes handled by Translate.
const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func (Postgres) Translate(err error) error {
	var pe *pq.Error
	if !errors.As(err, &pe) {
		return err
	}
	switch string(pe.Code) {
	case pgExclusionViolation:
		return fmt.Errorf("%w: %v", ErrOverlap, err)
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return err
}
