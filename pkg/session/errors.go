package session

import "errors"

// Precondition errors raised before any remote call is attempted.
// Callers should use errors.Is() to check for these; they are
// user-correctable and never retryable.
var (
	// ErrNoProject means no current project is set. Use set_project or
	// create_project first.
	ErrNoProject = errors.New("session: no project set, use set_project or create_project first")

	// ErrInvalidProjectID means a non-positive project id was supplied.
	ErrInvalidProjectID = errors.New("session: project id must be a positive integer")

	// ErrTeamRequired means create_project was called without a team id
	// and no default team is configured.
	ErrTeamRequired = errors.New("session: team_id is required and no default team is configured")
)
