package domain

import "errors"

var (
	ErrProfileNotFound = errors.New("staff profile not found")
	ErrNoSiteAssigned  = errors.New("no assigned site location")
)

// ValidationError reports the first invalid input field. Validation failures
// never reach the identity provider or the document store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
