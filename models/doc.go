/*
Package models defines the request, response and domain types shared by the
votaciones API.

# Conventions

JSON field names follow the Spanish external contract consumed by the school
frontend (carnet, nombre, apellido, votacion_id, estado, ...). Go identifiers
stay English.

Every response body is either models.Response (success/message/data) or one of
the specialized envelopes that extend it (LoginResponse, HasVotedResponse...).

# Election states

An election moves through the estado enum:

	pendiente → en_progreso → finalizada
	pendiente / en_progreso → cancelada

ValidEstado checks enum membership only; transition rules are enforced in the
handlers package.
*/
package models
