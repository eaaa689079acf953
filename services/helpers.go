package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/tichu-tournament/repositories"
)

// handleRepositoryError maps repository sentinels onto service errors.
// Anything unknown is a dependency failure labelled with op.
func handleRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	default:
		return dependencyError(op, err)
	}
}

func dependencyError(op string, err error) error {
	return wrapError(ErrDependencyFailure, fmt.Sprintf("%s: %v", op, err), err)
}
