package tui

import "errors"

var (
	// ErrMissingQueryService means the session would have nothing to
	// answer questions with.
	ErrMissingQueryService = errors.New("tui: query service is required")

	// ErrInvalidPorts is what NewApp returns for a nil aggregate.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")
)
