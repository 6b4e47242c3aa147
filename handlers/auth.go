package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Carnet == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Carnet y contraseña son requeridos")
		return
	}

	// A missing carnet and a wrong password are indistinguishable to the
	// caller: both answer 401.
	var student models.Student
	var hash string
	err := h.db.QueryRow(`
		SELECT id, carnet, nombre, apellido, curso, paralelo, password
		FROM estudiantes
		WHERE carnet = $1
	`, req.Carnet).Scan(
		&student.ID, &student.Carnet, &student.Nombre, &student.Apellido,
		&student.Curso, &student.Paralelo, &hash,
	)

	if err == sql.ErrNoRows {
		slog.Warn("login attempt for unknown carnet", "carnet", req.Carnet)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Carnet o contraseña incorrectos")
		return
	}
	if err != nil {
		slog.Error("failed to query student for login", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error en el servidor al iniciar sesión", err)
		return
	}

	if !auth.CheckPassword(hash, req.Password) {
		slog.Warn("login attempt with wrong password", "carnet", req.Carnet)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Carnet o contraseña incorrectos")
		return
	}

	token, err := auth.GenerateToken(student.ID, student.Carnet, h.cfg.JWTSecret)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error en el servidor al iniciar sesión", err)
		return
	}

	slog.Info("student logged in", "carnet", student.Carnet)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "Inicio de sesión exitoso",
		Token:   token,
		Data:    student,
	})
}

// Verify handles GET /auth/verify
// The RequireAuth middleware has already validated the token; this just
// echoes the decoded identity back.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Token inválido o expirado")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyResponse{
		Success: true,
		Message: "Token válido",
		User: map[string]string{
			"id":     claims.ID,
			"carnet": claims.Carnet,
			"role":   claims.Role,
		},
	})
}
