// Package model is the single choke point for all LLM calls. Every stage of
// the pipeline talks to the backend through a Gateway, and every result comes
// back as an Outcome rather than an error that could escape the pipeline.
package model

import "fmt"

// FailureKind classifies why a model invocation failed.
type FailureKind string

// Failure kinds. Auth/BadRequest/NotFound are caller or configuration errors
// and are never retried; TransientNetwork covers connection-level and 5xx
// errors that retry locally; ExhaustedRetries is the terminal transient state.
const (
	AuthError        FailureKind = "auth_error"
	BadRequest       FailureKind = "bad_request"
	NotFound         FailureKind = "not_found"
	TransientNetwork FailureKind = "transient_network"
	ExhaustedRetries FailureKind = "exhausted_retries"
)

// Failure carries the failure classification and the backend's detail text.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("model call failed (%s): %s", f.Kind, f.Detail)
}

// Outcome is the tagged result of one model invocation. Exactly one of Text
// or Err is meaningful.
type Outcome struct {
	Text string
	Err  *Failure
}

// Failed reports whether the invocation produced a failure.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Success wraps generated text in a successful Outcome.
func Success(text string) Outcome {
	return Outcome{Text: text}
}

// Fail builds a failure Outcome.
func Fail(kind FailureKind, detail string) Outcome {
	return Outcome{Err: &Failure{Kind: kind, Detail: detail}}
}

// Invocation describes one chat-style model call. ImageRefs beyond the first
// three are ignored by providers.
type Invocation struct {
	SystemPrompt string
	UserPrompt   string
	ImageRefs    []string
}
