package strategy

import "fmt"

// RejectedError reports a request the pipeline refused before doing any model
// work: a bad style type, a missing input file, or a failed required
// acquisition. It maps to a client error at the HTTP boundary.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

// FatalError reports a pipeline stage that failed in a way the run cannot
// recover from, such as the selling-points or content-direction analysis
// coming back as a hard model failure.
type FatalError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}
