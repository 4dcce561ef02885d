// Package constraint translates storage-level unique violations into the
// validation error shape, so a race that slips past application checks is
// reported the same way as a failed uniqueness validation.
package constraint

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/grouproster/grouproster/internal/validation"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	sqliteUniquePrefix   = "UNIQUE constraint failed: "
	sqliteErrCodeTrailer = " ("
)

// Unique describes one unique index and the field it guards.
type Unique struct {
	// Field is reported in the validation error.
	Field string
	// Index is the index name, reported by PostgreSQL and MySQL.
	Index string
	// Table and Columns are reported by SQLite.
	Table   string
	Columns []string
}

// Translate returns a validation.Errors uniqueness failure when err is a
// unique violation of one of the given indexes, and err unchanged otherwise.
func Translate(err error, uniques ...Unique) error {
	if err == nil {
		return nil
	}

	for _, u := range uniques {
		if u.violatedBy(err) {
			return validation.Errors{validation.Taken(u.Field)}
		}
	}

	return err
}

// IsUniqueViolation reports whether err is any unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	return err != nil && strings.Contains(err.Error(), sqliteUniquePrefix)
}

func (u Unique) violatedBy(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == u.Index
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// "Duplicate entry 'x' for key 'users.index_users_on_email'" (8.0)
		// "Duplicate entry 'x' for key 'index_users_on_email'" (5.7)
		return myErr.Number == mysqlDuplicateEntry &&
			(strings.HasSuffix(myErr.Message, "'"+u.Index+"'") ||
				strings.HasSuffix(myErr.Message, "."+u.Index+"'"))
	}

	cols := sqliteFailedColumns(err.Error())

	return cols != "" && cols == u.sqliteColumns()
}

func (u Unique) sqliteColumns() string {
	cols := make([]string, 0, len(u.Columns))
	for _, c := range u.Columns {
		cols = append(cols, u.Table+"."+c)
	}

	return strings.Join(cols, ", ")
}

// sqliteFailedColumns extracts "users.email" from
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
func sqliteFailedColumns(msg string) string {
	i := strings.Index(msg, sqliteUniquePrefix)
	if i < 0 {
		return ""
	}

	cols := msg[i+len(sqliteUniquePrefix):]
	if j := strings.Index(cols, sqliteErrCodeTrailer); j >= 0 {
		cols = cols[:j]
	}

	return strings.TrimSpace(cols)
}
