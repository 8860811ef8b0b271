package corpus

import "fmt"

// StaleCheckError means the revision marker exists but could not be read.
type StaleCheckError struct {
	Root string
	Err  error
}

func (e *StaleCheckError) Error() string {
	return fmt.Sprintf("checking corpus revision in %s: %v", e.Root, e.Err)
}

func (e *StaleCheckError) Unwrap() error { return e.Err }

// FetchError means downloading or extracting the snapshot failed. The
// revision marker has not been written, so the next run starts over.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching corpus from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CommitError means the corpus was extracted but its marker could not be
// written. The next run will refetch.
type CommitError struct {
	Root string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("recording corpus revision in %s: %v", e.Root, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
