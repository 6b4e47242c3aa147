package db

import (
	"strings"

	"github.com/lib/pq"
)

// Postgres error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a duplicate-key rejection from
// either supported driver. Postgres surfaces a typed *pq.Error; modernc's
// sqlite driver only exposes the engine message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign-key rejection.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint rejection
// (e.g. hora_fin > hora_inicio on votaciones).
func IsCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23514"
	}
	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// DriverName maps the configured database type to the registered sql driver.
func DriverName(databaseType string) string {
	if databaseType == "sqlite" {
		return "sqlite"
	}
	return "postgres"
}
