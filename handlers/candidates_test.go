package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/edvote/votaciones-api/models"
	"github.com/edvote/votaciones-api/testutil"
)

func TestRegisterCandidateJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewCandidateHandler(db, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name: "propuestas as array",
			requestBody: map[string]interface{}{
				"carnet":     "2020-0001",
				"nombre":     "Luis",
				"apellido":   "Martínez",
				"propuestas": []string{"Más deporte", "Mejor cafetería"},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "propuestas as serialized string",
			requestBody: map[string]interface{}{
				"carnet":     "2020-0002",
				"nombre":     "María",
				"apellido":   "López",
				"propuestas": `["Biblioteca abierta","Club de ciencias"]`,
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "propuestas not an array",
			requestBody: map[string]interface{}{
				"carnet":     "2020-0003",
				"nombre":     "Pedro",
				"apellido":   "Sánchez",
				"propuestas": "no soy un array",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing propuestas",
			requestBody: map[string]interface{}{
				"carnet":   "2020-0004",
				"nombre":   "Sofía",
				"apellido": "Ramírez",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing carnet",
			requestBody: map[string]interface{}{
				"nombre":     "Sofía",
				"apellido":   "Ramírez",
				"propuestas": []string{"Algo"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate carnet",
			requestBody: map[string]interface{}{
				"carnet":     "2020-0001",
				"nombre":     "Otro",
				"apellido":   "Luis",
				"propuestas": []string{"Algo"},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/candidatos/register", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Register(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp struct {
					Success bool             `json:"success"`
					Data    models.Candidate `json:"data"`
				}
				testutil.AssertJSON(t, w, &resp)

				if resp.Data.ID == "" {
					t.Error("Expected non-empty candidate ID")
				}
				if len(resp.Data.Propuestas) != 2 {
					t.Errorf("Expected 2 propuestas, got %d", len(resp.Data.Propuestas))
				}
				if resp.Data.FotoURL != nil {
					t.Error("Expected nil fotoUrl for JSON registration")
				}
			}
		})
	}
}

func multipartCandidate(t *testing.T, carnet, photoName string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("carnet", carnet)
	mw.WriteField("nombre", "Foto")
	mw.WriteField("apellido", "Candidata")
	mw.WriteField("propuestas", `["Propuesta con foto"]`)
	if photoName != "" {
		fw, err := mw.CreateFormFile("foto", photoName)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		fw.Write(photo)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRegisterCandidateMultipart(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewCandidateHandler(db, cfg)

	t.Run("with photo", func(t *testing.T) {
		body, contentType := multipartCandidate(t, "2020-0010", "perfil.png", []byte("fake-png-bytes"))
		req := httptest.NewRequest("POST", "/candidatos/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp struct {
			Success bool             `json:"success"`
			Data    models.Candidate `json:"data"`
		}
		testutil.AssertJSON(t, w, &resp)

		if resp.Data.FotoURL == nil {
			t.Fatal("Expected fotoUrl to be set")
		}

		// The file must exist on disk under the uploads directory
		entries, err := os.ReadDir(cfg.UploadsDir)
		if err != nil {
			t.Fatalf("Failed to read uploads dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected 1 uploaded file, got %d", len(entries))
		}
	})

	t.Run("oversized photo rejected", func(t *testing.T) {
		before, _ := os.ReadDir(cfg.UploadsDir)

		// One byte over the 5 MB cap
		big := bytes.Repeat([]byte{0x42}, maxPhotoBytes+1)
		body, contentType := multipartCandidate(t, "2020-0015", "enorme.png", big)
		req := httptest.NewRequest("POST", "/candidatos/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)

		// No candidate row and no file, truncated or otherwise
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM candidatos WHERE carnet = '2020-0015'").Scan(&count); err != nil {
			t.Fatalf("Failed to count candidates: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected no candidate row for rejected upload, got %d", count)
		}

		after, err := os.ReadDir(cfg.UploadsDir)
		if err != nil {
			t.Fatalf("Failed to read uploads dir: %v", err)
		}
		if len(after) != len(before) {
			t.Errorf("Expected oversized upload to leave no file: %d files before, %d after",
				len(before), len(after))
		}
	})

	t.Run("rejected extension", func(t *testing.T) {
		body, contentType := multipartCandidate(t, "2020-0011", "script.sh", []byte("#!/bin/sh"))
		req := httptest.NewRequest("POST", "/candidatos/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("photo removed when insert fails", func(t *testing.T) {
		before, _ := os.ReadDir(cfg.UploadsDir)

		// Duplicate carnet forces the insert to fail after the photo landed
		body, contentType := multipartCandidate(t, "2020-0010", "otra.jpg", []byte("fake-jpg-bytes"))
		req := httptest.NewRequest("POST", "/candidatos/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)

		after, err := os.ReadDir(cfg.UploadsDir)
		if err != nil {
			t.Fatalf("Failed to read uploads dir: %v", err)
		}
		if len(after) != len(before) {
			t.Errorf("Expected orphaned photo to be cleaned up: %d files before, %d after",
				len(before), len(after))
		}
	})

	t.Run("without photo", func(t *testing.T) {
		body, contentType := multipartCandidate(t, "2020-0012", "", nil)
		req := httptest.NewRequest("POST", "/candidatos/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		handler.Register(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
	})
}

func TestGetCandidateByCarnet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewCandidateHandler(db, cfg)

	candidatoID := testutil.CreateTestCandidate(t, db, "2020-0001")

	t.Run("existing candidate", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/candidatos/2020-0001", nil, nil)
		req.SetPathValue("carnet", "2020-0001")
		w := httptest.NewRecorder()

		handler.GetByCarnet(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Success bool             `json:"success"`
			Data    models.Candidate `json:"data"`
		}
		testutil.AssertJSON(t, w, &resp)

		if resp.Data.ID != candidatoID {
			t.Errorf("Candidate ID = %s, want %s", resp.Data.ID, candidatoID)
		}
		if len(resp.Data.Propuestas) != 2 {
			t.Errorf("Expected 2 propuestas, got %d", len(resp.Data.Propuestas))
		}
	})

	t.Run("unknown carnet", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/candidatos/9999-0000", nil, nil)
		req.SetPathValue("carnet", "9999-0000")
		w := httptest.NewRecorder()

		handler.GetByCarnet(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestListCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewCandidateHandler(db, cfg)

	testutil.CreateTestCandidate(t, db, "2020-0001")
	testutil.CreateTestCandidate(t, db, "2020-0002")

	req := testutil.MakeRequest("GET", "/candidatos", nil, nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp struct {
		Success bool               `json:"success"`
		Data    []models.Candidate `json:"data"`
	}
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Data) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(resp.Data))
	}
}
