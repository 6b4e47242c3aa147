/*
Package db owns schema creation and storage-error classification.

# Schema

CreateSchema is an explicit, idempotent initialization step invoked once from
main at process startup (never as an import side effect):

	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil { ... }

The DDL is portable across the two supported engines (Postgres via lib/pq,
sqlite via modernc.org/sqlite).

# Integrity signals

The one-vote-per-student-per-election rule is enforced by the UNIQUE
(votacion_id, estudiante_id) constraint on votos. Handlers run a friendlier
pre-check first, but the constraint is the authoritative signal; they call
IsUniqueViolation on the insert error to translate it into the domain error
instead of leaking driver codes.
*/
package db
