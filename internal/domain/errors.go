package domain

import "errors"

var (
	// ErrPoolTooSmall is returned when the filtered pool cannot supply
	// four distinct people. It marks a normal, recoverable state.
	ErrPoolTooSmall = errors.New("person pool too small for a question")
	// ErrNoQuestion is returned when an answer arrives but no question
	// is currently displayed.
	ErrNoQuestion = errors.New("no question available")
	// ErrUnknownOption is returned when a submitted choice is not one of
	// the current question's four options.
	ErrUnknownOption = errors.New("option not part of current question")
	// ErrDatasetNotFound indicates the country dataset could not be loaded.
	ErrDatasetNotFound = errors.New("country dataset not found")
	// ErrStatsNotFound indicates no persisted stats exist for a player.
	ErrStatsNotFound = errors.New("player stats not found")
)
