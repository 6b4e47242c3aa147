/*
Package main provides the entry point for the votaciones API server.

The votaciones API is the REST backend for a student election system:
students and candidates register, administrators create votaciones (voting
events) and associate eligible candidates and participants with them, and
eligible students cast exactly one vote per election.

# Starting the server

The server reads configuration from environment variables (optionally via a
.env file) or CLI flags:

	DATABASE_URL=postgres://... JWT_SECRET=... go run main.go

Or with flags:

	go run main.go -p 3000 -d "postgres://..." --jwt-secret dev-secret

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string
  - JWT_SECRET (--jwt-secret): secret for session token signing

Optional settings:

  - PORT (-p): server port (default: 3000)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - UPLOADS_DIR (--uploads): candidate photo directory (default: uploads)
  - APP_ENV (--env): development or production (default: development)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (auth, students, candidates, elections, votes)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, auth, JSON helpers
  - models: request/response and domain types
  - auth: password hashing, session tokens, ID generation
  - db: schema creation and storage-error classification
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
