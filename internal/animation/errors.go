package animation

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures
type Kind string

const (
	KindInput    Kind = "input"    // client sent an unusable request
	KindModel    Kind = "model"    // LLM call failed
	KindRender   Kind = "render"   // renderer exited non-zero or could not start
	KindArtifact Kind = "artifact" // renderer succeeded but produced no video
	KindInternal Kind = "internal" // local IO and everything else
)

// ErrStepTextRequired is returned for requests without step text
var ErrStepTextRequired = errors.New("stepText is required")

// Error is a pipeline failure tagged with its Kind
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or KindInternal if it is not a pipeline error
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsInput reports whether err was caused by the request itself
func IsInput(err error) bool {
	return KindOf(err) == KindInput
}
