// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grouproster/grouproster/internal/config"
)

const (
	mysqlDefaultExtras  = "charset=utf8mb4&parseTime=True&loc=UTC"
	sqliteDefaultPragma = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// Create builds the Data Source Name for the configured driver.
func Create(dbCfg *config.DB) (string, error) {
	switch dbCfg.Driver {
	case config.DriverSQLite:
		return SQLite(dbCfg), nil
	case config.DriverMySQL:
		return MySQL(dbCfg), nil
	case config.DriverPostgres:
		return Postgres(dbCfg), nil
	default:
		return "", config.ErrUnsupportedDriver
	}
}

// MySQL builds a go-sql-driver/mysql DSN.
func MySQL(dbCfg *config.DB) string {
	extras := dbCfg.Extras
	if extras == "" {
		extras = mysqlDefaultExtras
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		portOr(dbCfg.Port, 3306), //nolint: mnd
		dbCfg.Name,
		extras,
	)
}

// Postgres builds a pgx keyword/value DSN. Empty values are left out so the
// driver defaults apply.
func Postgres(dbCfg *config.DB) string {
	var b strings.Builder

	for _, kv := range [][2]string{
		{"host", dbCfg.Host},
		{"port", strconv.Itoa(portOr(dbCfg.Port, 5432))}, //nolint: mnd
		{"user", dbCfg.User},
		{"password", dbCfg.Password},
		{"dbname", dbCfg.Name},
	} {
		if kv[1] == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(kv[0] + "=" + quoteValue(kv[1]))
	}

	if dbCfg.Extras != "" {
		b.WriteString(" " + dbCfg.Extras)
	}

	return b.String()
}

// quoteValue single-quotes v when it holds a space, a quote or a backslash.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, " \t\n\r\v\f'\\") {
		return v
	}

	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// SQLite builds a file URI with foreign keys enforced.
func SQLite(dbCfg *config.DB) string {
	path := strings.TrimPrefix(dbCfg.Path, "file:")

	out := "file:" + path + "?" + sqliteDefaultPragma
	if dbCfg.Extras != "" {
		out += "&" + dbCfg.Extras
	}

	return out
}

func portOr(port, fallback int) int {
	if port == 0 {
		return fallback
	}

	return port
}
