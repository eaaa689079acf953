package services

import "errors"

// Error kinds. Every error a service returns wraps exactly one of them,
// handlers map them onto HTTP status codes.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrValidationFailed   = errors.New("validation failed")
	ErrDependencyFailure  = errors.New("dependency failure")
)

// serviceError carries a caller-facing message, its kind and an optional cause.
type serviceError struct {
	kind  error
	msg   string
	cause error
}

func (e *serviceError) Error() string {
	return e.msg
}

func (e *serviceError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func newError(kind error, msg string) error {
	return &serviceError{kind: kind, msg: msg}
}

func wrapError(kind error, msg string, cause error) error {
	return &serviceError{kind: kind, msg: msg, cause: cause}
}

// Ресурсы
var (
	ErrTournamentNotFound = newError(ErrNotFound, "tournament not found")
	ErrTeamNotFound       = newError(ErrNotFound, "team not found")
	ErrRoundNotFound      = newError(ErrNotFound, "round not found")
	ErrMatchNotFound      = newError(ErrNotFound, "match not found")
	ErrGameNotFound       = newError(ErrNotFound, "game not found")
)

// Аутентификация и доступ
var (
	ErrTeamTokenRequired   = newError(ErrUnauthorized, "team token required")
	ErrInvalidTeamToken    = newError(ErrUnauthorized, "invalid team token")
	ErrNotMatchParticipant = newError(ErrUnauthorized, "no access to this match")
	ErrInvalidCredentials  = newError(ErrUnauthorized, "invalid credentials")
	ErrOrganizerLoginOff   = newError(ErrUnauthorized, "organizer login is not configured")
)

// Состояние турнира и матчей
var (
	ErrTournamentNotInSetup  = newError(ErrPreconditionFailed, "tournament is not in setup status")
	ErrTournamentNotActive   = newError(ErrPreconditionFailed, "tournament is not active")
	ErrTournamentCompleted   = newError(ErrPreconditionFailed, "tournament is already completed")
	ErrNotEnoughTeams        = newError(ErrPreconditionFailed, "at least 2 teams are required to start a tournament")
	ErrRoundIncomplete       = newError(ErrPreconditionFailed, "all matches in the current round must be completed")
	ErrNoPairingsPossible    = newError(ErrPreconditionFailed, "no pairings possible: every remaining team has already played its candidates")
	ErrMatchAlreadyConfirmed = newError(ErrPreconditionFailed, "match already confirmed")
	ErrMatchIncomplete       = newError(ErrPreconditionFailed, "match must have exactly 4 games before confirmation")
)

// Повторы
var (
	// ErrRoundUnrecoverable means a partially stored round no longer matches the pairing it was created from.
	ErrRoundUnrecoverable = newError(ErrDependencyFailure, "round was left incomplete and cannot be repaired, contact the organizer")
)

// Входные данные
var (
	ErrGameAddressRequired = newError(ErrValidationFailed, "either game_id or both match_id and game_number are required")
	ErrInvalidGameNumber   = newError(ErrValidationFailed, "game number must be between 1 and 4")
)
