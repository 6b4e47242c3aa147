package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/db"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
)

type StudentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStudentHandler(db *sql.DB, cfg cliparse.Config) *StudentHandler {
	return &StudentHandler{db: db, cfg: cfg}
}

// Register handles POST /estudiantes/register
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterStudentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Carnet == "" || req.Nombre == "" || req.Apellido == "" ||
		req.Curso == "" || req.Paralelo == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Todos los campos son requeridos: carnet, nombre, apellido, curso, paralelo, password")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar estudiante", err)
		return
	}

	studentID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate student ID", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar estudiante", err)
		return
	}

	// The UNIQUE constraint on carnet is the duplicate check; no pre-read.
	_, err = h.db.Exec(`
		INSERT INTO estudiantes (id, carnet, nombre, apellido, curso, paralelo, password, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, studentID, req.Carnet, req.Nombre, req.Apellido, req.Curso, req.Paralelo, hash, time.Now())

	if err != nil {
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "El carnet de estudiante ya está registrado")
			return
		}
		slog.Error("failed to insert student", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar estudiante", err)
		return
	}

	slog.Info("student registered", "carnet", req.Carnet)

	middleware.SuccessResponse(w, http.StatusCreated, "Estudiante registrado exitosamente", models.Student{
		ID:       studentID,
		Carnet:   req.Carnet,
		Nombre:   req.Nombre,
		Apellido: req.Apellido,
		Curso:    req.Curso,
		Paralelo: req.Paralelo,
	})
}

// List handles GET /estudiantes
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, carnet, nombre, apellido, curso, paralelo
		FROM estudiantes
		ORDER BY carnet
	`)
	if err != nil {
		slog.Error("failed to query students", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener la lista de estudiantes", err)
		return
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Carnet, &s.Nombre, &s.Apellido, &s.Curso, &s.Paralelo); err != nil {
			slog.Error("failed to scan student", "error", err)
			middleware.InternalErrorResponse(w, h.cfg, "Error al obtener la lista de estudiantes", err)
			return
		}
		students = append(students, s)
	}

	middleware.SuccessResponse(w, http.StatusOK, "", students)
}

// GetByCarnet handles GET /estudiantes/:carnet
func (h *StudentHandler) GetByCarnet(w http.ResponseWriter, r *http.Request) {
	carnet := r.PathValue("carnet")
	if carnet == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "carnet es requerido")
		return
	}

	var s models.Student
	err := h.db.QueryRow(`
		SELECT id, carnet, nombre, apellido, curso, paralelo
		FROM estudiantes
		WHERE carnet = $1
	`, carnet).Scan(&s.ID, &s.Carnet, &s.Nombre, &s.Apellido, &s.Curso, &s.Paralelo)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Estudiante no encontrado")
		return
	}
	if err != nil {
		slog.Error("failed to query student", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al buscar estudiante", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", s)
}
