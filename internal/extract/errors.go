package extract

import "fmt"

// MalformedResponseError indicates the backend returned something that could
// not be decoded as the required schema, or a value outside the field's
// domain. The affected (row, field) pair is left unresolved for the pass.
type MalformedResponseError struct {
	Field string
	Raw   string // raw response body, truncated
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for field %q: %v (response: %s)", e.Field, e.Err, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// BackendError indicates the inference call itself could not be completed
// (connectivity, timeout, service error).
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %q call failed: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// truncateForError truncates content for error messages.
func truncateForError(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}
