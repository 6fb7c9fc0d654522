package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found") // General not found

	// Token Errors
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenNotFound     = errors.New("token not found in storage")
	ErrTokenLimitReached = errors.New("token limit reached")

	// Authorization Errors
	ErrUnauthorized     = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden        = errors.New("forbidden")    // Authenticated, but lacks permission
	ErrPermissionNeeded = errors.New("token lacks required permission")

	// Team Errors
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamFull          = errors.New("team is at maximum capacity")
	ErrAlreadyInTeam     = errors.New("user is already in a team")
	ErrNotInTeam         = errors.New("user is not in a team")
	ErrNotTeamOwner      = errors.New("only the team owner may do this")
	ErrTeamWrongPassword = errors.New("wrong team password")

	// Progress Errors
	ErrInvalidTaskState    = errors.New("invalid task state")
	ErrGameDataUnavailable = errors.New("game reference data not loaded yet")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)

// Машинно-читаемые коды для ErrorResponse.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeTeamFull     = "TEAM_FULL"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)
