package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edvote/votaciones-api/auth"
	"github.com/edvote/votaciones-api/middleware"
	"github.com/edvote/votaciones-api/models"
	"github.com/edvote/votaciones-api/testutil"
)

func TestLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)

	studentID := testutil.CreateTestStudent(t, db, "2021-0042", "secreto123")

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.LoginResponse)
	}{
		{
			name: "valid credentials",
			requestBody: models.LoginRequest{
				Carnet:   "2021-0042",
				Password: "secreto123",
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *models.LoginResponse) {
				if resp.Token == "" {
					t.Error("Expected non-empty token")
				}
				if resp.Data.ID != studentID {
					t.Errorf("Student ID = %s, want %s", resp.Data.ID, studentID)
				}

				// The token must decode back to the same identity
				claims, err := auth.ParseToken(resp.Token, cfg.JWTSecret)
				if err != nil {
					t.Fatalf("Issued token does not parse: %v", err)
				}
				if claims.Carnet != "2021-0042" {
					t.Errorf("Token carnet = %s, want 2021-0042", claims.Carnet)
				}
			},
		},
		{
			name: "wrong password",
			requestBody: models.LoginRequest{
				Carnet:   "2021-0042",
				Password: "incorrecta",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown carnet",
			requestBody: models.LoginRequest{
				Carnet:   "9999-0000",
				Password: "secreto123",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing carnet",
			requestBody: models.LoginRequest{
				Password: "secreto123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			requestBody: models.LoginRequest{
				Carnet: "2021-0042",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/auth/login", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil {
				var resp models.LoginResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig(t)
	handler := NewAuthHandler(db, cfg)

	studentID := testutil.CreateTestStudent(t, db, "2021-0042", "secreto123")
	token, err := auth.GenerateToken(studentID, "2021-0042", cfg.JWTSecret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	// Verify sits behind RequireAuth; exercise the full chain
	protected := middleware.RequireAuth(cfg.JWTSecret, handler.Verify)

	t.Run("valid token", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/auth/verify", nil, map[string]string{
			"Authorization": "Bearer " + token,
		})
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp struct {
			Success bool              `json:"success"`
			Message string            `json:"message"`
			User    map[string]string `json:"user"`
		}
		testutil.AssertJSON(t, w, &resp)

		if resp.User["id"] != studentID {
			t.Errorf("User id = %s, want %s", resp.User["id"], studentID)
		}
		if resp.User["carnet"] != "2021-0042" {
			t.Errorf("User carnet = %s, want 2021-0042", resp.User["carnet"])
		}
	})

	t.Run("missing token", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/auth/verify", nil, nil)
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/auth/verify", nil, map[string]string{
			"Authorization": "Bearer not-a-token",
		})
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		forged, _ := auth.GenerateToken(studentID, "2021-0042", "other-secret")
		req := testutil.MakeRequest("GET", "/auth/verify", nil, map[string]string{
			"Authorization": "Bearer " + forged,
		})
		w := httptest.NewRecorder()

		protected(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}
