package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Discovery and session errors
	ErrSchoolNotFound   = fmt.Errorf("school not found")
	ErrInvalidSession   = fmt.Errorf("session secret rejected by portal")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session secret expired")

	// Upstream errors
	ErrTransport         = fmt.Errorf("upstream request failed")
	ErrMalformedResponse = fmt.Errorf("malformed upstream response")

	// Normalization and persistence errors
	ErrConversion   = fmt.Errorf("no task records survived conversion")
	ErrUserNotFound = fmt.Errorf("user not found")

	// Input validation errors
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrInvalidFlag  = fmt.Errorf("invalid flag value")
)
