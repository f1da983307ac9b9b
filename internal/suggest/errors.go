package suggest

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload marks a successful response whose body is not a candidate list.
// Callers never see it as a failure; the provider substitutes an empty list.
var ErrMalformedPayload = errors.New("autocomplete payload is not a list")

// FetchFailure is returned when the autocomplete endpoint cannot be reached or
// answers with a non-success status.
type FetchFailure struct {
	Query      string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchFailure) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("autocomplete %q: %v", e.Query, e.Err)
	case e.Status != "":
		return fmt.Sprintf("autocomplete %q: HTTP error! Status: %s", e.Query, e.Status)
	default:
		return fmt.Sprintf("autocomplete %q: HTTP error! Status: %d", e.Query, e.StatusCode)
	}
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// IsFetchFailure reports whether err carries a *FetchFailure.
func IsFetchFailure(err error) bool {
	var ff *FetchFailure
	return errors.As(err, &ff)
}
