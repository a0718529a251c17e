// errors.go defines sentinel error values for GitHub API failures so callers
// can map them to HTTP responses without inspecting status codes themselves.
package scm

import "errors"

var (
	// ErrRepositoryNotFound is returned when the repository does not exist or
	// the token cannot see it. GitHub reports both as 404.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrReleaseNotFound is returned when the repository exists but has no
	// release matching the requested tag, or no releases at all.
	ErrReleaseNotFound = errors.New("release not found")

	// ErrBadCredentials is returned on 401 responses: the token is missing,
	// revoked, or expired.
	ErrBadCredentials = errors.New("github credentials rejected")

	// ErrRateLimited is returned on 403 responses with an exhausted rate
	// limit. The caller should surface this rather than retry.
	ErrRateLimited = errors.New("github API rate limit exceeded")
)

// APIError represents an unexpected error from the GitHub API.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new API error.
func NewAPIError(statusCode int, message string, err error) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
