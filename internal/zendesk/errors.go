package zendesk

import (
	"fmt"
)

// FetchError reports a failed walk of an upstream collection. A fetch that
// returns one carries no partial result. Failures scoped to a single
// ticket's comment thread are absorbed by the fetcher and never surface as
// a FetchError.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
