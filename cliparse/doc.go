/*
Package cliparse parses server configuration from CLI flags with environment
variable fallbacks.

# Settings

Required:

  - DATABASE_URL (-d): connection string for the configured driver
  - JWT_SECRET (--jwt-secret): secret for session token signing

Optional:

  - PORT (-p): server port (default: 3000)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - UPLOADS_DIR (--uploads): candidate photo directory (default: uploads)
  - APP_ENV (--env): development or production (default: development);
    production masks internal error detail in responses

A .env file, when present, is loaded by main via godotenv before ParseFlags
runs, so every setting above can live there during development.
*/
package cliparse
