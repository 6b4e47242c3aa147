/*
Package auth provides credential hashing, session tokens and random IDs.

# Passwords

Student passwords are stored as bcrypt hashes (cost 10):

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# Session tokens

Login issues an HS256 JWT carrying the student's id, carnet and role with a
one hour expiry:

	token, err := auth.GenerateToken(id, carnet, cfg.JWTSecret)
	claims, err := auth.ParseToken(token, cfg.JWTSecret)

ParseToken collapses every failure mode (malformed, bad signature, expired)
into ErrInvalidToken so callers answer 401 uniformly.

# IDs

GenerateID produces random hex identifiers used as primary keys for all rows.
*/
package auth
