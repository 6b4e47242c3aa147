/*
Package middleware provides HTTP cross-cutting helpers: request logging, CORS,
Bearer-token authentication and JSON response envelopes.

# Response envelope

All handlers answer through JSONResponse/SuccessResponse/ErrorResponse so that
every body carries the success flag and message the frontend expects:

	middleware.SuccessResponse(w, http.StatusOK, "Votación eliminada", nil)
	middleware.ErrorResponse(w, http.StatusNotFound, "Votación no encontrada")

# Authentication

RequireAuth validates the Authorization: Bearer header and stores the decoded
claims in the request context:

	mux.HandleFunc("GET /auth/verify",
		middleware.RequireAuth(cfg.JWTSecret, authHandler.Verify))

Handlers retrieve them with ClaimsFromContext(r.Context()).
*/
package middleware
