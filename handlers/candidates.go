package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/db"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
)

// maxPhotoBytes caps candidate photo uploads at 5 MB.
const maxPhotoBytes = 5 << 20

// errPhotoTooLarge is returned by savePhoto when the upload exceeds
// maxPhotoBytes. The partial file is already removed by then.
var errPhotoTooLarge = errors.New("photo exceeds maximum size")

type CandidateHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCandidateHandler(db *sql.DB, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{db: db, cfg: cfg}
}

// Register handles POST /candidatos/register
// Accepts multipart/form-data (fields + optional "foto" image) or plain JSON
// without a photo. A photo that already landed on disk is removed again if
// any later step fails.
func (h *CandidateHandler) Register(w http.ResponseWriter, r *http.Request) {
	var carnet, nombre, apellido, propuestasJSON string
	var photoPath, photoURL string
	var parseErr string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Formulario inválido o imagen demasiado grande")
			return
		}
		carnet = r.FormValue("carnet")
		nombre = r.FormValue("nombre")
		apellido = r.FormValue("apellido")
		propuestasJSON, parseErr = normalizePropuestas(quoteFormValue(r.FormValue("propuestas")))

		if file, header, err := r.FormFile("foto"); err == nil {
			defer file.Close()
			photoPath, photoURL, err = h.savePhoto(file, header.Filename)
			if errors.Is(err, errPhotoTooLarge) {
				middleware.ErrorResponse(w, http.StatusBadRequest, "La imagen supera el tamaño máximo de 5 MB")
				return
			}
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, "Solo se permiten imágenes (JPEG, JPG, PNG)")
				return
			}
		}
	} else {
		var req struct {
			Carnet     string          `json:"carnet"`
			Nombre     string          `json:"nombre"`
			Apellido   string          `json:"apellido"`
			Propuestas json.RawMessage `json:"propuestas"`
		}
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido")
			return
		}
		carnet, nombre, apellido = req.Carnet, req.Nombre, req.Apellido
		propuestasJSON, parseErr = normalizePropuestas(req.Propuestas)
	}

	cleanup := func() {
		if photoPath != "" {
			if err := os.Remove(photoPath); err != nil {
				slog.Warn("failed to remove uploaded photo", "path", photoPath, "error", err)
			}
		}
	}

	if carnet == "" || nombre == "" || apellido == "" || len(propuestasJSON) == 0 {
		cleanup()
		middleware.ErrorResponse(w, http.StatusBadRequest,
			"Todos los campos son requeridos: carnet, nombre, apellido, propuestas")
		return
	}

	if parseErr != "" {
		cleanup()
		middleware.ErrorResponse(w, http.StatusBadRequest, parseErr)
		return
	}

	candidateID, err := auth.GenerateID(16)
	if err != nil {
		cleanup()
		slog.Error("failed to generate candidate ID", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar el candidato", err)
		return
	}

	var fotoURL *string
	if photoURL != "" {
		fotoURL = &photoURL
	}

	now := time.Now()
	_, err = h.db.Exec(`
		INSERT INTO candidatos (id, carnet, nombre, apellido, propuestas, foto_url, fecha_registro)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, candidateID, carnet, nombre, apellido, propuestasJSON, fotoURL, now)

	if err != nil {
		cleanup()
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "El carnet ya está registrado")
			return
		}
		slog.Error("failed to insert candidate", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al registrar el candidato", err)
		return
	}

	slog.Info("candidate registered", "carnet", carnet, "has_photo", fotoURL != nil)

	var propuestas []string
	_ = json.Unmarshal([]byte(propuestasJSON), &propuestas)

	middleware.SuccessResponse(w, http.StatusCreated, "Candidato registrado exitosamente", models.Candidate{
		ID:         candidateID,
		Carnet:     carnet,
		Nombre:     nombre,
		Apellido:   apellido,
		Propuestas: propuestas,
		FotoURL:    fotoURL,
		CreatedAt:  now,
	})
}

// List handles GET /candidatos
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, carnet, nombre, apellido, propuestas, foto_url, fecha_registro
		FROM candidatos
		ORDER BY carnet
	`)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al obtener candidatos", err)
		return
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.InternalErrorResponse(w, h.cfg, "Error al obtener candidatos", err)
			return
		}
		candidates = append(candidates, c)
	}

	middleware.SuccessResponse(w, http.StatusOK, "", candidates)
}

// GetByCarnet handles GET /candidatos/:carnet
func (h *CandidateHandler) GetByCarnet(w http.ResponseWriter, r *http.Request) {
	carnet := r.PathValue("carnet")
	if carnet == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "carnet es requerido")
		return
	}

	row := h.db.QueryRow(`
		SELECT id, carnet, nombre, apellido, propuestas, foto_url, fecha_registro
		FROM candidatos
		WHERE carnet = $1
	`, carnet)

	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidato no encontrado")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.InternalErrorResponse(w, h.cfg, "Error al buscar candidato", err)
		return
	}

	middleware.SuccessResponse(w, http.StatusOK, "", c)
}

// savePhoto stores an uploaded image under the uploads directory with a
// random filename and returns the disk path and public URL.
func (h *CandidateHandler) savePhoto(file io.Reader, originalName string) (path, url string, err error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", "", os.ErrInvalid
	}

	name := uuid.NewString() + ext
	path = filepath.Join(h.cfg.UploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	// Read one byte past the cap so an oversized upload is rejected rather
	// than silently truncated.
	written, err := io.Copy(dst, io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		os.Remove(path)
		return "", "", err
	}
	if written > maxPhotoBytes {
		os.Remove(path)
		return "", "", errPhotoTooLarge
	}

	return path, "/uploads/" + name, nil
}

// normalizePropuestas accepts either a JSON array of strings or a JSON string
// containing a serialized array, and returns the canonical serialized form.
// An empty second return means success; otherwise it carries the user-facing
// validation message.
func normalizePropuestas(raw json.RawMessage) (string, string) {
	if len(raw) == 0 {
		return "", ""
	}

	const invalid = "Formato de propuestas inválido. Debe ser un array JSON"

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		serialized, err := json.Marshal(list)
		if err != nil {
			return "", invalid
		}
		return string(serialized), ""
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		if err := json.Unmarshal([]byte(inner), &list); err != nil {
			return "", invalid
		}
		return inner, ""
	}

	return "", invalid
}

// quoteFormValue wraps a raw form value as a JSON string so it flows through
// the same validation as JSON body requests.
func quoteFormValue(formValue string) json.RawMessage {
	if formValue == "" {
		return nil
	}
	quoted, _ := json.Marshal(formValue)
	return quoted
}

// scanCandidate reads one candidate row, deserializing the stored proposal
// list. Works for both *sql.Row and *sql.Rows.
func scanCandidate(row interface{ Scan(...interface{}) error }) (models.Candidate, error) {
	var c models.Candidate
	var propuestasJSON string
	var fotoURL sql.NullString

	err := row.Scan(&c.ID, &c.Carnet, &c.Nombre, &c.Apellido, &propuestasJSON, &fotoURL, &c.CreatedAt)
	if err != nil {
		return models.Candidate{}, err
	}

	if err := json.Unmarshal([]byte(propuestasJSON), &c.Propuestas); err != nil {
		return models.Candidate{}, err
	}
	if fotoURL.Valid {
		c.FotoURL = &fotoURL.String
	}
	return c, nil
}
