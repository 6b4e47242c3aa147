package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
)

// ErrElectionNotFound is returned by the package-level election helpers when
// the referenced election row does not exist.
var ErrElectionNotFound = errors.New("votación no encontrada")

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// CanTransition reports whether an election may move from one estado to
// another. Same-state writes are allowed as no-ops; finalizada and cancelada
// are terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case models.EstadoPendiente:
		return to == models.EstadoEnProgreso || to == models.EstadoCancelada
	case models.EstadoEnProgreso:
		return to == models.EstadoFinalizada || to == models.EstadoCancelada
	}
	return false
}

// validateSchedule checks the fecha/hora fields of a create or full-update
// request. Returns a user-facing message, or "" when valid.
func validateSchedule(fecha, horaInicio, horaFin string) string {
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		return "Formato de fecha inválido, se espera YYYY-MM-DD"
	}
	inicio, err := time.Parse("15:04", horaInicio)
	if err != nil {
		return "Formato de hora_inicio inválido, se espera HH:MM"
	}
	fin, err := time.Parse("15:04", horaFin)
	if err != nil {
		return "Formato de hora_fin inválido, se espera HH:MM"
	}
	if !fin.After(inicio) {
		return "La hora de fin debe ser posterior a la hora de inicio"
	}
	return ""
}

// GetElection loads a single election row.
func GetElection(db *sql.DB, id string) (models.Election, error) {
	row := db.QueryRow(`
		SELECT id, nombre, descripcion, fecha, hora_inicio, hora_fin, estado, creado_en
		FROM votaciones
		WHERE id = $1
	`, id)

	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return models.Election{}, ErrElectionNotFound
	}
	return e, err
}

// ElectionCandidates returns the full candidate records associated with an
// election.
func ElectionCandidates(db *sql.DB, votacionID string) ([]models.Candidate, error) {
	rows, err := db.Query(`
		SELECT c.id, c.carnet, c.nombre, c.apellido, c.propuestas, c.foto_url, c.fecha_registro
		FROM candidatos c
		INNER JOIN votacion_candidatos vc ON c.id = vc.candidato_id
		WHERE vc.votacion_id = $1
		ORDER BY c.carnet
	`, votacionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// ElectionParticipants returns the full student records associated with an
// election.
func ElectionParticipants(db *sql.DB, votacionID string) ([]models.Student, error) {
	rows, err := db.Query(`
		SELECT e.id, e.carnet, e.nombre, e.apellido, e.curso, e.paralelo
		FROM estudiantes e
		INNER JOIN votacion_participantes vp ON e.id = vp.estudiante_id
		WHERE vp.votacion_id = $1
		ORDER BY e.carnet
	`, votacionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Carnet, &s.Nombre, &s.Apellido, &s.Curso, &s.Paralelo); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// IsEligible reports whether the student appears in the election's
// participant association set.
func IsEligible(db *sql.DB, votacionID, estudianteID string) (bool, error) {
	var eligible bool
	err := db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM votacion_participantes
			WHERE votacion_id = $1 AND estudiante_id = $2
		)
	`, votacionID, estudianteID).Scan(&eligible)
	return eligible, err
}

// Create handles POST /votaciones
func (h *ElectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Nombre == "" || req.Fecha == "" || req.HoraInicio == "" || req.HoraFin == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}

	if msg := validateSchedule(req.Fecha, req.HoraInicio, req.HoraFin); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al crear votación", err)
		return
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO votaciones (id, nombre, descripcion, fecha, hora_inicio, hora_fin, estado, creado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, electionID, req.Nombre, req.Descripcion, req.Fecha, req.HoraInicio, req.HoraFin,
		models.EstadoPendiente, now)

	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al crear votación", err)
		return
	}

	slog.Info("election created", "votacion_id", electionID, "nombre", req.Nombre)

	middleware.SuccessResponse(w, http.StatusCreated, "", models.Election{
		ID:          electionID,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Fecha:       req.Fecha,
		HoraInicio:  req.HoraInicio,
		HoraFin:     req.HoraFin,
		Estado:      models.EstadoPendiente,
		CreadoEn:    now,
	})
}

// List handles GET /votaciones
func (h *ElectionHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, nombre, descripcion, fecha, hora_inicio, hora_fin, estado, creado_en
		FROM votaciones
		ORDER BY creado_en
	`)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener votaciones", err)
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.InternalErrorResponse(w, h.cfg, "Error al obtener votaciones", err)
			return
		}
		elections = append(elections, e)
	}

	middleware.SuccessResponse(w, http.StatusOK, "", elections)
}

// Get handles GET /votaciones/:id
func (h *ElectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	election, err := GetElection(h.db, id)
	if err == ErrElectionNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener votación", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", election)
}

// Update handles PUT /votaciones/:id
// Full-row overwrite: all schedule fields must be supplied so nothing is
// silently nulled. The estado field is optional; when present it must be a
// legal transition from the current state.
func (h *ElectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Nombre == "" || req.Fecha == "" || req.HoraInicio == "" || req.HoraFin == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Actualización completa requiere: nombre, fecha, hora_inicio, hora_fin")
		return
	}

	if msg := validateSchedule(req.Fecha, req.HoraInicio, req.HoraFin); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	current, err := GetElection(h.db, id)
	if err == ErrElectionNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al actualizar votación", err)
		return
	}

	estado := req.Estado
	if estado == "" {
		estado = current.Estado
	} else {
		if !models.ValidEstado(estado) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Estado inválido")
			return
		}
		if !CanTransition(current.Estado, estado) {
			middleware.ErrorResponse(w, http.StatusBadRequest,
				"Transición de estado no permitida: "+current.Estado+" → "+estado)
			return
		}
	}

	_, err = h.db.Exec(`
		UPDATE votaciones
		SET nombre = $1, descripcion = $2, fecha = $3, hora_inicio = $4, hora_fin = $5, estado = $6
		WHERE id = $7
	`, req.Nombre, req.Descripcion, req.Fecha, req.HoraInicio, req.HoraFin, estado, id)

	if err != nil {
		slog.Error("failed to update election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al actualizar votación", err)
		return
	}

	slog.Info("election updated", "votacion_id", id)

	middleware.SuccessResponse(w, http.StatusOK, "", models.Election{
		ID:          id,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Fecha:       req.Fecha,
		HoraInicio:  req.HoraInicio,
		HoraFin:     req.HoraFin,
		Estado:      estado,
		CreadoEn:    current.CreadoEn,
	})
}

// Delete handles DELETE /votaciones/:id
// Association rows and votes go with it via ON DELETE CASCADE.
func (h *ElectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := h.db.Exec(`DELETE FROM votaciones WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al eliminar votación", err)
		return
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	}

	slog.Info("election deleted", "votacion_id", id)
	middleware.SuccessResponse(w, http.StatusOK, "Votación eliminada", nil)
}

// ChangeEstado handles PATCH /votaciones/:id/estado
func (h *ElectionHandler) ChangeEstado(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.ChangeEstadoRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if !models.ValidEstado(req.Estado) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Estado inválido")
		return
	}

	current, err := GetElection(h.db, id)
	if err == ErrElectionNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al cambiar estado de la votación", err)
		return
	}

	if !CanTransition(current.Estado, req.Estado) {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Transición de estado no permitida: "+current.Estado+" → "+req.Estado)
		return
	}

	if current.Estado != req.Estado {
		_, err = h.db.Exec(`UPDATE votaciones SET estado = $1 WHERE id = $2`, req.Estado, id)
		if err != nil {
			slog.Error("failed to update election estado", "error", err)
			middleware.InternalErrorResponse(w, h.cfg, "Error al cambiar estado de la votación", err)
			return
		}
		slog.Info("election estado changed", "votacion_id", id, "from", current.Estado, "to", req.Estado)
	}

	current.Estado = req.Estado
	middleware.SuccessResponse(w, http.StatusOK, "", current)
}

// AddCandidato handles POST /votaciones/candidato
// Idempotent: re-adding an existing pair is silently ignored.
func (h *ElectionHandler) AddCandidato(w http.ResponseWriter, r *http.Request) {
	var req models.ElectionCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.VotacionID == "" || req.CandidatoID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votacion_id y candidato_id son requeridos")
		return
	}

	_, err := h.db.Exec(`
		INSERT INTO votacion_candidatos (votacion_id, candidato_id)
		VALUES ($1, $2)
		ON CONFLICT (votacion_id, candidato_id) DO NOTHING
	`, req.VotacionID, req.CandidatoID)

	if err != nil {
		slog.Error("failed to add candidate to election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al agregar candidato", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Candidato agregado a la votación", nil)
}

// RemoveCandidato handles DELETE /votaciones/candidato
func (h *ElectionHandler) RemoveCandidato(w http.ResponseWriter, r *http.Request) {
	var req models.ElectionCandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.VotacionID == "" || req.CandidatoID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votacion_id y candidato_id son requeridos")
		return
	}

	_, err := h.db.Exec(`
		DELETE FROM votacion_candidatos WHERE votacion_id = $1 AND candidato_id = $2
	`, req.VotacionID, req.CandidatoID)

	if err != nil {
		slog.Error("failed to remove candidate from election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al quitar candidato", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Candidato quitado de la votación", nil)
}

// ListCandidatos handles GET /votaciones/:id/candidatos
func (h *ElectionHandler) ListCandidatos(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	candidates, err := ElectionCandidates(h.db, id)
	if err != nil {
		slog.Error("failed to query election candidates", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener candidatos", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", candidates)
}

// AddParticipante handles POST /votaciones/participante
// Same idempotent insert semantics as AddCandidato.
func (h *ElectionHandler) AddParticipante(w http.ResponseWriter, r *http.Request) {
	var req models.ElectionParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.VotacionID == "" || req.EstudianteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votacion_id y estudiante_id son requeridos")
		return
	}

	_, err := h.db.Exec(`
		INSERT INTO votacion_participantes (votacion_id, estudiante_id)
		VALUES ($1, $2)
		ON CONFLICT (votacion_id, estudiante_id) DO NOTHING
	`, req.VotacionID, req.EstudianteID)

	if err != nil {
		slog.Error("failed to add participant to election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al agregar participante", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Participante agregado a la votación", nil)
}

// RemoveParticipante handles DELETE /votaciones/participante
func (h *ElectionHandler) RemoveParticipante(w http.ResponseWriter, r *http.Request) {
	var req models.ElectionParticipantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.VotacionID == "" || req.EstudianteID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "votacion_id y estudiante_id son requeridos")
		return
	}

	_, err := h.db.Exec(`
		DELETE FROM votacion_participantes WHERE votacion_id = $1 AND estudiante_id = $2
	`, req.VotacionID, req.EstudianteID)

	if err != nil {
		slog.Error("failed to remove participant from election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al quitar participante", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "Participante quitado de la votación", nil)
}

// ListParticipantes handles GET /votaciones/:id/participantes
func (h *ElectionHandler) ListParticipantes(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	students, err := ElectionParticipants(h.db, id)
	if err != nil {
		slog.Error("failed to query election participants", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener participantes", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", students)
}

// GetCompleta handles GET /votaciones/:id/completa
// Issues three independent queries; a concurrent delete between them can
// yield partial results, which is acceptable at this criticality level.
func (h *ElectionHandler) GetCompleta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	election, err := GetElection(h.db, id)
	if err == ErrElectionNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener la información completa de la votación", err)
		return
	}

	candidates, err := ElectionCandidates(h.db, id)
	if err != nil {
		slog.Error("failed to query election candidates", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener la información completa de la votación", err)
		return
	}

	participants, err := ElectionParticipants(h.db, id)
	if err != nil {
		slog.Error("failed to query election participants", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener la información completa de la votación", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", models.ElectionDetail{
		Election:      election,
		Candidatos:    candidates,
		Participantes: participants,
	})
}

// PuedeVotar handles GET /votaciones/:id/puede-votar/:estudiante_id
func (h *ElectionHandler) PuedeVotar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	estudianteID := r.PathValue("estudiante_id")

	eligible, err := IsEligible(h.db, id, estudianteID)
	if err != nil {
		slog.Error("failed to check eligibility", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al verificar elegibilidad", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EligibilityResponse{
		Success:    true,
		PuedeVotar: eligible,
	})
}

// scanElection reads one election row. Works for both *sql.Row and *sql.Rows.
func scanElection(row interface{ Scan(...interface{}) error }) (models.Election, error) {
	var e models.Election
	var descripcion sql.NullString

	err := row.Scan(&e.ID, &e.Nombre, &descripcion, &e.Fecha, &e.HoraInicio, &e.HoraFin,
		&e.Estado, &e.CreadoEn)
	if err != nil {
		return models.Election{}, err
	}

	e.Descripcion = descripcion.String
	return e, nil
}
