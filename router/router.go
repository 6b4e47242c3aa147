package router

import (
	"database/sql"
	"net/http"

	"github.com/edvote/votaciones-api/cliparse"
	"github.com/edvote/votaciones-api/handlers"
	"github.com/edvote/votaciones-api/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	studentHandler := handlers.NewStudentHandler(db, cfg)
	candidateHandler := handlers.NewCandidateHandler(db, cfg)
	electionHandler := handlers.NewElectionHandler(db, cfg)
	voteHandler := handlers.NewVoteHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/verify", middleware.WithLogging(
		middleware.RequireAuth(cfg.JWTSecret, authHandler.Verify)))

	// Students
	mux.HandleFunc("POST /estudiantes/register", middleware.WithLogging(studentHandler.Register))
	mux.HandleFunc("GET /estudiantes", middleware.WithLogging(studentHandler.List))
	mux.HandleFunc("GET /estudiantes/{carnet}", middleware.WithLogging(studentHandler.GetByCarnet))

	// Candidates
	mux.HandleFunc("POST /candidatos/register", middleware.WithLogging(candidateHandler.Register))
	mux.HandleFunc("GET /candidatos", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("GET /candidatos/{carnet}", middleware.WithLogging(candidateHandler.GetByCarnet))

	// Elections
	mux.HandleFunc("POST /votaciones", middleware.WithLogging(electionHandler.Create))
	mux.HandleFunc("GET /votaciones", middleware.WithLogging(electionHandler.List))
	mux.HandleFunc("GET /votaciones/{id}", middleware.WithLogging(electionHandler.Get))
	mux.HandleFunc("PUT /votaciones/{id}", middleware.WithLogging(electionHandler.Update))
	mux.HandleFunc("DELETE /votaciones/{id}", middleware.WithLogging(electionHandler.Delete))
	mux.HandleFunc("PATCH /votaciones/{id}/estado", middleware.WithLogging(electionHandler.ChangeEstado))

	// Candidate / participant associations
	mux.HandleFunc("POST /votaciones/candidato", middleware.WithLogging(electionHandler.AddCandidato))
	mux.HandleFunc("DELETE /votaciones/candidato", middleware.WithLogging(electionHandler.RemoveCandidato))
	mux.HandleFunc("GET /votaciones/{id}/candidatos", middleware.WithLogging(electionHandler.ListCandidatos))
	mux.HandleFunc("POST /votaciones/participante", middleware.WithLogging(electionHandler.AddParticipante))
	mux.HandleFunc("DELETE /votaciones/participante", middleware.WithLogging(electionHandler.RemoveParticipante))
	mux.HandleFunc("GET /votaciones/{id}/participantes", middleware.WithLogging(electionHandler.ListParticipantes))

	mux.HandleFunc("GET /votaciones/{id}/completa", middleware.WithLogging(electionHandler.GetCompleta))
	mux.HandleFunc("GET /votaciones/{id}/puede-votar/{estudiante_id}", middleware.WithLogging(electionHandler.PuedeVotar))

	// Votes
	mux.HandleFunc("POST /votos", middleware.WithLogging(voteHandler.Cast))
	mux.HandleFunc("GET /votos/votacion/{id}", middleware.WithLogging(voteHandler.ListByVotacion))
	mux.HandleFunc("GET /votos/votacion/{id}/estudiante/{estudiante_id}", middleware.WithLogging(voteHandler.GetStudentVote))
	mux.HandleFunc("GET /votos/votacion/{id}/estudiante/{estudiante_id}/ya-voto", middleware.WithLogging(voteHandler.YaVoto))
	mux.HandleFunc("GET /votos/votacion/{id}/resultados", middleware.WithLogging(voteHandler.Resultados))

	// Candidate photos
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(cfg.UploadsDir))))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votaciones API v1"))
	})

	return mux
}
