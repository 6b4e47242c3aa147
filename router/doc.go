/*
Package router wires HTTP routes to handlers using Go 1.22+ method and
pattern routing on the standard ServeMux.

NewRouter receives the shared *sql.DB and configuration and registers the
full API surface: /auth, /estudiantes, /candidatos, /votaciones, /votos, the
/uploads static file tree for candidate photos, and a /health liveness probe.

All dynamic routes are wrapped with middleware.WithLogging; /auth/verify is
additionally wrapped with middleware.RequireAuth. CORS is applied once around
the whole mux by main.
*/
package router
