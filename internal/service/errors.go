package service

import "errors"

// Sentinel errors forming the failure taxonomy of the core operations.
// Authorization and validation failures are terminal for the call; storage
// read failures wrap ErrStorageUnavailable and are never retried here.
var (
	ErrNotAuthenticated       = errors.New("caller is not authenticated")
	ErrNotAdmin               = errors.New("caller is not an active admin")
	ErrInsufficientPermission = errors.New("caller lacks the required permission")
	ErrUserNotRegistered      = errors.New("no registered user profile exists for this email")
	ErrAlreadyAdmin           = errors.New("an admin account already exists for this user")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrNotFound               = errors.New("record not found")
)
