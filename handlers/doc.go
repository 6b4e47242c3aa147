/*
Package handlers contains HTTP request handlers for the votaciones API.

# Handler types

Each handler is a struct with database and config dependencies:

  - AuthHandler: login and token verification
  - StudentHandler: voter registration and lookup
  - CandidateHandler: candidate registration (with photo upload) and lookup
  - ElectionHandler: election lifecycle, candidate/participant associations
  - VoteHandler: vote casting, lookup and tallies

Handlers are created via constructor functions that accept *sql.DB and Config:

	voteHandler := handlers.NewVoteHandler(db, cfg)

# Election lifecycle

Elections move through guarded estado transitions:

	pendiente → en_progreso → finalizada
	pendiente / en_progreso → cancelada

PATCH /votaciones/{id}/estado rejects anything else. Votes are only accepted
while the election is en_progreso.

# Vote integrity

CastVote checks state, participant eligibility and candidate membership, then
inserts. The duplicate pre-check gives a friendly message; the UNIQUE
(votacion_id, estudiante_id) constraint is what actually guarantees one vote
per student per election, and a violation during insert maps to the same
ErrDuplicateVote.

The core operations (CastVote, VotesFor, VoteOf, HasVoted, ComputeTally,
GetElection, IsEligible, ElectionCandidates, ElectionParticipants) are
package-level functions over an injected *sql.DB, so they can be exercised
directly in tests without going through HTTP.
*/
package handlers
