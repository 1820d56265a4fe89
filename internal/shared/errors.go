package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidToken     = fmt.Errorf("invalid or expired token")
	ErrEmailTaken       = fmt.Errorf("email already registered")

	// Catalog errors
	ErrServiceUnavailable = fmt.Errorf("catalog service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Account store errors
	ErrUserNotFound     = fmt.Errorf("user not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrAlreadyFollowing = fmt.Errorf("already following this artist")
	ErrAlreadyLiked     = fmt.Errorf("track already liked")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
