package services

import "errors"

// Shared business errors, mapped to HTTP statuses in the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountBanned          = errors.New("account is banned")
	ErrInsufficientBalance    = errors.New("insufficient wallet balance")
	ErrInvalidAmount          = errors.New("amount must be a positive value")
	ErrRejectionNotesRequired = errors.New("admin notes are required when rejecting a payment proof")
	ErrRegistrationNotOpen    = errors.New("tournament is not open for registration")
	ErrTournamentFull         = errors.New("tournament is full")
	ErrTeamFull               = errors.New("team is full")
	ErrTeamModeMismatch       = errors.New("team mode does not match the tournament game mode")
	ErrLeaderCannotLeave      = errors.New("team leader cannot leave while other members remain")

	// Conflicts
	ErrUserEmailConflict     = errors.New("email address is already in use")
	ErrUserUsernameConflict  = errors.New("username is already in use")
	ErrTeamNameConflict      = errors.New("team name is already in use")
	ErrAlreadyInTeam         = errors.New("user is already in a team")
	ErrRegistrationConflict  = errors.New("user or team is already registered for this tournament")
	ErrProofAlreadyReviewed  = errors.New("payment proof has already been reviewed")
	ErrResultAlreadyRecorded = errors.New("match result already recorded for this participant")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrLeaderActionOnly     = errors.New("only the team leader can perform this action")

	// Entity-specific not-found errors
	ErrUserNotFound        = errors.New("user not found")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant registration not found")
	ErrProofNotFound       = errors.New("payment proof not found")

	// Tournament field validation
	ErrTournamentInvalidCapacity  = errors.New("tournament max participants must be positive")
	ErrTournamentInvalidDateRange = errors.New("tournament end time must be after start time")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
)
