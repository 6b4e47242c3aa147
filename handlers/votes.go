package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/db"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
)

// Domain errors surfaced by CastVote. The handler maps each to its HTTP
// status; callers embedding the ledger elsewhere get the same taxonomy.
var (
	ErrElectionNotOpen  = errors.New("la votación no está en progreso")
	ErrNotEligible      = errors.New("el estudiante no está habilitado para votar en esta votación")
	ErrInvalidCandidate = errors.New("el candidato no pertenece a esta votación")
	ErrDuplicateVote    = errors.New("el estudiante ya ha votado en esta votación")
)

type VoteHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg}
}

// CastVote records one vote for a student in an election after checking
// election state, participant eligibility and candidate membership.
//
// The duplicate pre-check only exists for a friendly error message: two
// concurrent casts for the same (votacion, estudiante) pair can both pass it.
// The UNIQUE (votacion_id, estudiante_id) constraint is the authoritative
// integrity signal, and its violation is translated to ErrDuplicateVote.
func CastVote(dbc *sql.DB, votacionID, estudianteID, candidatoID string) (models.Vote, error) {
	election, err := GetElection(dbc, votacionID)
	if err != nil {
		return models.Vote{}, err
	}
	if election.Estado != models.EstadoEnProgreso {
		return models.Vote{}, ErrElectionNotOpen
	}

	eligible, err := IsEligible(dbc, votacionID, estudianteID)
	if err != nil {
		return models.Vote{}, err
	}
	if !eligible {
		return models.Vote{}, ErrNotEligible
	}

	var validCandidate bool
	err = dbc.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM votacion_candidatos
			WHERE votacion_id = $1 AND candidato_id = $2
		)
	`, votacionID, candidatoID).Scan(&validCandidate)
	if err != nil {
		return models.Vote{}, err
	}
	if !validCandidate {
		return models.Vote{}, ErrInvalidCandidate
	}

	existing, err := VoteOf(dbc, votacionID, estudianteID)
	if err != nil {
		return models.Vote{}, err
	}
	if existing != nil {
		return models.Vote{}, ErrDuplicateVote
	}

	voteID, err := auth.GenerateID(16)
	if err != nil {
		return models.Vote{}, err
	}

	vote := models.Vote{
		ID:           voteID,
		VotacionID:   votacionID,
		EstudianteID: estudianteID,
		CandidatoID:  candidatoID,
		Fecha:        time.Now(),
	}

	_, err = dbc.Exec(`
		INSERT INTO votos (id, votacion_id, estudiante_id, candidato_id, fecha)
		VALUES ($1, $2, $3, $4, $5)
	`, vote.ID, vote.VotacionID, vote.EstudianteID, vote.CandidatoID, vote.Fecha)

	if err != nil {
		if db.IsUniqueViolation(err) {
			// Lost the race: another request inserted between the
			// pre-check and this insert.
			return models.Vote{}, ErrDuplicateVote
		}
		return models.Vote{}, err
	}

	return vote, nil
}

// VotesFor returns all votes recorded for an election.
func VotesFor(dbc *sql.DB, votacionID string) ([]models.Vote, error) {
	rows, err := dbc.Query(`
		SELECT id, votacion_id, estudiante_id, candidato_id, fecha
		FROM votos
		WHERE votacion_id = $1
		ORDER BY fecha
	`, votacionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.VotacionID, &v.EstudianteID, &v.CandidatoID, &v.Fecha); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// VoteOf returns the student's vote in an election, or nil when the student
// has not voted. Absence is not an error.
func VoteOf(dbc *sql.DB, votacionID, estudianteID string) (*models.Vote, error) {
	var v models.Vote
	err := dbc.QueryRow(`
		SELECT id, votacion_id, estudiante_id, candidato_id, fecha
		FROM votos
		WHERE votacion_id = $1 AND estudiante_id = $2
	`, votacionID, estudianteID).Scan(&v.ID, &v.VotacionID, &v.EstudianteID, &v.CandidatoID, &v.Fecha)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// HasVoted reports whether the student already cast a vote in the election.
func HasVoted(dbc *sql.DB, votacionID, estudianteID string) (bool, error) {
	vote, err := VoteOf(dbc, votacionID, estudianteID)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

// ComputeTally aggregates an election's votes per candidate. Candidates
// without votes do not appear in the map.
func ComputeTally(dbc *sql.DB, votacionID string) (map[string]int, error) {
	rows, err := dbc.Query(`
		SELECT candidato_id, COUNT(*)
		FROM votos
		WHERE votacion_id = $1
		GROUP BY candidato_id
	`, votacionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tally := map[string]int{}
	for rows.Next() {
		var candidatoID string
		var count int
		if err := rows.Scan(&candidatoID, &count); err != nil {
			return nil, err
		}
		tally[candidatoID] = count
	}
	return tally, rows.Err()
}

// Cast handles POST /votos
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.VotacionID == "" || req.EstudianteID == "" || req.CandidatoID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Faltan datos para votar")
		return
	}

	_, err := CastVote(h.db, req.VotacionID, req.EstudianteID, req.CandidatoID)
	switch {
	case err == nil:
	case errors.Is(err, ErrElectionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
		return
	case errors.Is(err, ErrElectionNotOpen):
		middleware.ErrorResponse(w, http.StatusConflict, "La votación no está en progreso")
		return
	case errors.Is(err, ErrNotEligible):
		middleware.ErrorResponse(w, http.StatusForbidden, "El estudiante no está habilitado para votar en esta votación")
		return
	case errors.Is(err, ErrInvalidCandidate):
		middleware.ErrorResponse(w, http.StatusBadRequest, "El candidato no pertenece a esta votación")
		return
	case errors.Is(err, ErrDuplicateVote):
		middleware.ErrorResponse(w, http.StatusBadRequest, "El estudiante ya ha votado en esta votación")
		return
	default:
		slog.Error("failed to cast vote", "error", err,
			"votacion_id", req.VotacionID, "estudiante_id", req.EstudianteID)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar el voto", err)
		return
	}

	slog.Info("vote cast", "votacion_id", req.VotacionID, "estudiante_id", req.EstudianteID)
	middleware.SuccessResponse(w, http.StatusOK, "Voto registrado correctamente", nil)
}

// ListByVotacion handles GET /votos/votacion/:id
func (h *VoteHandler) ListByVotacion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	votes, err := VotesFor(h.db, id)
	if err != nil {
		slog.Error("failed to query votes", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener votos", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", votes)
}

// GetStudentVote handles GET /votos/votacion/:id/estudiante/:estudiante_id
// Responds with data null when the student has not voted; absence is not an
// error.
func (h *VoteHandler) GetStudentVote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	estudianteID := r.PathValue("estudiante_id")

	vote, err := VoteOf(h.db, id, estudianteID)
	if err != nil {
		slog.Error("failed to query vote", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener el voto", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", vote)
}

// YaVoto handles GET /votos/votacion/:id/estudiante/:estudiante_id/ya-voto
func (h *VoteHandler) YaVoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	estudianteID := r.PathValue("estudiante_id")

	voted, err := HasVoted(h.db, id, estudianteID)
	if err != nil {
		slog.Error("failed to check vote", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al verificar si ya votó", err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HasVotedResponse{
		Success: true,
		YaVoto:  voted,
	})
}

// Resultados handles GET /votos/votacion/:id/resultados
func (h *VoteHandler) Resultados(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := GetElection(h.db, id); err != nil {
		if err == ErrElectionNotFound {
			middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")
			return
		}
		slog.Error("failed to query election", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener resultados", err)
		return
	}

	tally, err := ComputeTally(h.db, id)
	if err != nil {
		slog.Error("failed to compute tally", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener resultados", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", tally)
}
