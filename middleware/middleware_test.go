package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/models"
)

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()

	JSONResponse(w, http.StatusTeapot, map[string]string{"hello": "world"})

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["hello"] != "world" {
		t.Errorf("Unexpected body: %v", body)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorResponse(w, http.StatusNotFound, "No encontrado")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var resp models.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if resp.Success {
		t.Error("Expected success false")
	}
	if resp.Message != "No encontrado" {
		t.Errorf("Message = %s, want No encontrado", resp.Message)
	}
}

func TestInternalErrorResponse(t *testing.T) {
	cause := errors.New("pq: connection refused")

	tests := []struct {
		name       string
		env        string
		err        error
		wantDetail bool
	}{
		{"development includes detail", "development", cause, true},
		{"production masks detail", "production", cause, false},
		{"nil error stays generic", "development", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			InternalErrorResponse(w, cliparse.Config{Env: tt.env}, "Error al obtener votos", tt.err)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("Expected status 500, got %d", w.Code)
			}

			var resp models.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if resp.Success {
				t.Error("Expected success false")
			}

			hasDetail := strings.Contains(resp.Message, "connection refused")
			if hasDetail != tt.wantDetail {
				t.Errorf("Message = %q, detail included = %v, want %v", resp.Message, hasDetail, tt.wantDetail)
			}
			if !strings.HasPrefix(resp.Message, "Error al obtener votos") {
				t.Errorf("Message = %q, want the generic prefix preserved", resp.Message)
			}
		})
	}
}

func TestSuccessResponse(t *testing.T) {
	w := httptest.NewRecorder()

	SuccessResponse(w, http.StatusCreated, "Creado", map[string]int{"n": 1})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]int `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success true")
	}
	if resp.Data["n"] != 1 {
		t.Errorf("Unexpected data: %v", resp.Data)
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"carnet":"2021-0042"}`))

		var body models.LoginRequest
		if err := ParseJSONBody(req, &body); err != nil {
			t.Fatalf("ParseJSONBody() error = %v", err)
		}
		if body.Carnet != "2021-0042" {
			t.Errorf("Carnet = %s, want 2021-0042", body.Carnet)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{broken`))

		var body models.LoginRequest
		if err := ParseJSONBody(req, &body); err == nil {
			t.Error("ParseJSONBody() expected error for malformed JSON")
		}
	})
}

func TestRequireAuth(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken("student-1", "2021-0042", secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	var seenClaims *auth.Claims
	protected := RequireAuth(secret, func(w http.ResponseWriter, r *http.Request) {
		seenClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"wrong scheme still parsed as token", "Basic abc123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seenClaims = nil

			req := httptest.NewRequest("GET", "/auth/verify", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			protected(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				if seenClaims == nil {
					t.Fatal("Expected claims in request context")
				}
				if seenClaims.ID != "student-1" {
					t.Errorf("Claims ID = %s, want student-1", seenClaims.ID)
				}
			} else if seenClaims != nil {
				t.Error("Handler ran despite failed authentication")
			}
		})
	}
}

func TestWithLogging(t *testing.T) {
	called := false
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/votaciones", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	if !called {
		t.Error("Wrapped handler was not called")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS(inner)

	t.Run("regular request", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/votaciones", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("Allow-Origin = %s, want the request origin", got)
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
			t.Error("Expected PATCH in allowed methods")
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest("OPTIONS", "/votaciones", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200 for preflight, got %d", w.Code)
		}
		if called {
			t.Error("Preflight request must not reach the inner handler")
		}
	})
}
