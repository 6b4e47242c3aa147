package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// For sqlite the foreign_keys pragma must be enabled per connection, so it is
// applied here before the DDL runs.
func CreateSchema(db *sql.DB, databaseType string) error {
	if databaseType == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL is written portably so the same statements run on both Postgres and
// sqlite: TEXT keys generated by the application, app-side timestamps, and
// composite primary keys for the association tables.
const schema = `
-- Students (voters)
CREATE TABLE IF NOT EXISTS estudiantes (
    id TEXT PRIMARY KEY,
    carnet TEXT NOT NULL UNIQUE,
    nombre TEXT NOT NULL,
    apellido TEXT NOT NULL,
    curso TEXT NOT NULL,
    paralelo TEXT NOT NULL,
    password TEXT NOT NULL,
    fecha_registro TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_estudiantes_carnet ON estudiantes(carnet);

-- Candidates
CREATE TABLE IF NOT EXISTS candidatos (
    id TEXT PRIMARY KEY,
    carnet TEXT NOT NULL UNIQUE,
    nombre TEXT NOT NULL,
    apellido TEXT NOT NULL,
    propuestas TEXT NOT NULL,
    foto_url TEXT,
    fecha_registro TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Elections
CREATE TABLE IF NOT EXISTS votaciones (
    id TEXT PRIMARY KEY,
    nombre TEXT NOT NULL,
    descripcion TEXT,
    fecha TEXT NOT NULL,
    hora_inicio TEXT NOT NULL,
    hora_fin TEXT NOT NULL,
    estado TEXT NOT NULL DEFAULT 'pendiente'
        CHECK (estado IN ('pendiente', 'en_progreso', 'finalizada', 'cancelada')),
    creado_en TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (hora_fin > hora_inicio)
);

CREATE INDEX IF NOT EXISTS idx_votaciones_estado ON votaciones(estado);

-- Candidates eligible per election
CREATE TABLE IF NOT EXISTS votacion_candidatos (
    votacion_id TEXT NOT NULL REFERENCES votaciones(id) ON DELETE CASCADE,
    candidato_id TEXT NOT NULL REFERENCES candidatos(id) ON DELETE CASCADE,
    PRIMARY KEY (votacion_id, candidato_id)
);

CREATE INDEX IF NOT EXISTS idx_votacion_candidatos_votacion ON votacion_candidatos(votacion_id);

-- Students eligible per election
CREATE TABLE IF NOT EXISTS votacion_participantes (
    votacion_id TEXT NOT NULL REFERENCES votaciones(id) ON DELETE CASCADE,
    estudiante_id TEXT NOT NULL REFERENCES estudiantes(id) ON DELETE CASCADE,
    PRIMARY KEY (votacion_id, estudiante_id)
);

CREATE INDEX IF NOT EXISTS idx_votacion_participantes_votacion ON votacion_participantes(votacion_id);

-- Votes: the UNIQUE pair is the authoritative one-vote-per-student backstop
CREATE TABLE IF NOT EXISTS votos (
    id TEXT PRIMARY KEY,
    votacion_id TEXT NOT NULL REFERENCES votaciones(id) ON DELETE CASCADE,
    estudiante_id TEXT NOT NULL REFERENCES estudiantes(id) ON DELETE CASCADE,
    candidato_id TEXT NOT NULL REFERENCES candidatos(id) ON DELETE CASCADE,
    fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (votacion_id, estudiante_id)
);

CREATE INDEX IF NOT EXISTS idx_votos_votacion ON votos(votacion_id);
CREATE INDEX IF NOT EXISTS idx_votos_votacion_estudiante ON votos(votacion_id, estudiante_id);
`
