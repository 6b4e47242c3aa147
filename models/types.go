package models

import "time"

// Election state constants (the external contract uses the Spanish names)
const (
	EstadoPendiente  = "pendiente"
	EstadoEnProgreso = "en_progreso"
	EstadoFinalizada = "finalizada"
	EstadoCancelada  = "cancelada"
)

// ValidEstado reports whether s is a member of the election state enum.
func ValidEstado(s string) bool {
	switch s {
	case EstadoPendiente, EstadoEnProgreso, EstadoFinalizada, EstadoCancelada:
		return true
	}
	return false
}

// Request types

type LoginRequest struct {
	Carnet   string `json:"carnet"`
	Password string `json:"password"`
}

type RegisterStudentRequest struct {
	Carnet   string `json:"carnet"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Curso    string `json:"curso"`
	Paralelo string `json:"paralelo"`
	Password string `json:"password"`
}

type CreateElectionRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Fecha       string `json:"fecha"`
	HoraInicio  string `json:"hora_inicio"`
	HoraFin     string `json:"hora_fin"`
}

type UpdateElectionRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	Fecha       string `json:"fecha"`
	HoraInicio  string `json:"hora_inicio"`
	HoraFin     string `json:"hora_fin"`
	Estado      string `json:"estado"`
}

type ChangeEstadoRequest struct {
	Estado string `json:"estado"`
}

type ElectionCandidateRequest struct {
	VotacionID  string `json:"votacion_id"`
	CandidatoID string `json:"candidato_id"`
}

type ElectionParticipantRequest struct {
	VotacionID   string `json:"votacion_id"`
	EstudianteID string `json:"estudiante_id"`
}

type CastVoteRequest struct {
	VotacionID   string `json:"votacion_id"`
	EstudianteID string `json:"estudiante_id"`
	CandidatoID  string `json:"candidato_id"`
}

// Response types
// Every endpoint answers with a success flag, an optional human-readable
// message and an optional payload.

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Token   string  `json:"token"`
	Data    Student `json:"data"`
}

type VerifyResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    interface{} `json:"user"`
}

type EligibilityResponse struct {
	Success    bool `json:"success"`
	PuedeVotar bool `json:"puedeVotar"`
}

type HasVotedResponse struct {
	Success bool `json:"success"`
	YaVoto  bool `json:"yaVoto"`
}

// Domain types

// Student is the public profile; the credential hash never leaves the
// handlers package.
type Student struct {
	ID       string `json:"id"`
	Carnet   string `json:"carnet"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Curso    string `json:"curso"`
	Paralelo string `json:"paralelo"`
}

type Candidate struct {
	ID         string    `json:"id"`
	Carnet     string    `json:"carnet"`
	Nombre     string    `json:"nombre"`
	Apellido   string    `json:"apellido"`
	Propuestas []string  `json:"propuestas"`
	FotoURL    *string   `json:"fotoUrl"`
	CreatedAt  time.Time `json:"fecha_registro"`
}

type Election struct {
	ID          string    `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	Fecha       string    `json:"fecha"`
	HoraInicio  string    `json:"hora_inicio"`
	HoraFin     string    `json:"hora_fin"`
	Estado      string    `json:"estado"`
	CreadoEn    time.Time `json:"creado_en"`
}

// ElectionDetail is an election joined with its candidate and participant sets.
type ElectionDetail struct {
	Election
	Candidatos    []Candidate `json:"candidatos"`
	Participantes []Student   `json:"participantes"`
}

type Vote struct {
	ID           string    `json:"id"`
	VotacionID   string    `json:"votacion_id"`
	EstudianteID string    `json:"estudiante_id"`
	CandidatoID  string    `json:"candidato_id"`
	Fecha        time.Time `json:"fecha"`
}
