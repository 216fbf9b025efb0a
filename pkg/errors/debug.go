package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLState describes a Postgres failure found in an error chain. Both the pgx
// and lib/pq drivers are understood since goose runs on database/sql.
type SQLState struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// ErrorDump is the log-side view of an error.
type ErrorDump struct {
	TopMessage string
	Code       Code
	HTTPStatus int
	Chain      []string
	SQL        *SQLState
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error(), SQL: FindSQLState(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.HTTPStatus = MetadataFor(te.Code()).HTTPStatus
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields flattens the dump into log fields, omitting empty SQL diagnostics.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.SQL == nil {
		return fields
	}
	for key, value := range map[string]string{
		"pg_code":       d.SQL.Code,
		"pg_constraint": d.SQL.Constraint,
		"pg_table":      d.SQL.Table,
		"pg_column":     d.SQL.Column,
		"pg_detail":     d.SQL.Detail,
		"pg_message":    d.SQL.Message,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

// FindSQLState returns the first Postgres error in the chain, or nil.
func FindSQLState(err error) *SQLState {
	if err == nil {
		return nil
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &SQLState{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &SQLState{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
