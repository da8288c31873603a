package catalog

import "fmt"

// UnsupportedInputError means the input string could not be classified as a
// supported catalog URL. Raised before any network call.
type UnsupportedInputError struct {
	Input  string
	Reason string
}

func (e *UnsupportedInputError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported input %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("unsupported input %q", e.Input)
}

// AuthError means the credential exchange failed. Fatal for the whole run.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog authentication failed: %s", e.Message)
	}
	return fmt.Sprintf("catalog authentication failed: HTTP %d", e.Status)
}

// CatalogError means a metadata API call failed after its retry.
type CatalogError struct {
	Status  int
	Message string
}

func (e *CatalogError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("catalog API error: HTTP %d", e.Status)
}

// MalformedResponseError means the API returned a success status with a body
// that is not valid JSON. The call is treated as failed outright rather than
// guessing at a partial result.
type MalformedResponseError struct {
	Original error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("catalog returned malformed response body: %v", e.Original)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Original
}

// EmptyResultError means the entity resolved cleanly but produced zero tracks,
// e.g. a private or emptied playlist.
type EmptyResultError struct {
	Kind Kind
	ID   string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s %s resolved to zero tracks", e.Kind, e.ID)
}
