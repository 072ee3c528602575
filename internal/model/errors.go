package model

import "errors"

// Common errors used across the application
var (
	// Player / directory errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPlayerID = errors.New("invalid player id")

	// Linking errors
	ErrUnknownExternalAccount = errors.New("external account not found on platform")
	ErrVerificationConflict   = errors.New("a link request is already pending for this handle")
	ErrNoVerification         = errors.New("no pending link request")
	ErrNotLinked              = errors.New("player is not linked on this platform")
	ErrUnknownPlatform        = errors.New("unknown platform")

	// Catalog errors
	ErrCatalogNotLoaded = errors.New("role catalog not loaded")
)
