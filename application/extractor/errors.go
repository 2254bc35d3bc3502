package extractor

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBody is returned when the document has nothing to walk
	ErrNoBody = errors.New("document has no body")

	// ErrMalformedTree means the registry and forest disagree. The whole pass
	// is discarded; callers may retry it.
	ErrMalformedTree = errors.New("malformed element tree")

	// ErrPassAborted wraps a panic recovered during a pass, after the page
	// mutations of that pass were reverted
	ErrPassAborted = errors.New("extraction pass aborted")
)

// TreeError describes a structural violation found after the walk
type TreeError struct {
	ID     int
	Reason string
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("element %d: %s", e.ID, e.Reason)
}

func (e *TreeError) Unwrap() error {
	return ErrMalformedTree
}
