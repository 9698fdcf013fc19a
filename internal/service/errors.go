package service

import (
	"errors"
	"fmt"
	"time"
)

// End-user texts for turns that could not produce a model reply.
const (
	ConnectionFallback   = "I'm sorry, I'm having trouble connecting to my brain."
	UnexpectedFallback   = "Oops! Something went wrong."
	NonConvergedFallback = "I'm sorry, I couldn't finish that request. Could you rephrase it or try again?"
	// RetryReply answers a model response that had neither content nor tool calls.
	RetryReply = "I'm sorry, I didn't quite get that. Could you please say it again?"
)

// ModelEndpointError means the completion endpoint failed or returned an
// unusable payload. The turn is aborted.
type ModelEndpointError struct {
	Provider string
	Err      error
}

func (e *ModelEndpointError) Error() string {
	return fmt.Sprintf("model endpoint %s failed: %v", e.Provider, e.Err)
}

func (e *ModelEndpointError) Unwrap() error {
	return e.Err
}

// ModelTimeoutError means a completion call exceeded its deadline.
type ModelTimeoutError struct {
	Provider string
	Timeout  time.Duration
}

func (e *ModelTimeoutError) Error() string {
	return fmt.Sprintf("model endpoint %s timed out after %s", e.Provider, e.Timeout)
}

// MaxRoundsExceededError means the model kept requesting tools past the
// configured bound.
type MaxRoundsExceededError struct {
	Rounds int
}

func (e *MaxRoundsExceededError) Error() string {
	return fmt.Sprintf("assistant did not converge after %d tool rounds", e.Rounds)
}

// FallbackReply maps a terminal turn error to the text shown to the user.
func FallbackReply(err error) string {
	var (
		endpointErr *ModelEndpointError
		timeoutErr  *ModelTimeoutError
		roundsErr   *MaxRoundsExceededError
	)
	switch {
	case errors.As(err, &roundsErr):
		return NonConvergedFallback
	case errors.As(err, &endpointErr), errors.As(err, &timeoutErr):
		return ConnectionFallback
	default:
		return UnexpectedFallback
	}
}

// ErrorCode is the short code reported in turn events and API errors.
func ErrorCode(err error) string {
	var (
		endpointErr *ModelEndpointError
		timeoutErr  *ModelTimeoutError
		roundsErr   *MaxRoundsExceededError
	)
	switch {
	case errors.As(err, &roundsErr):
		return "max_rounds_exceeded"
	case errors.As(err, &timeoutErr):
		return "model_timeout"
	case errors.As(err, &endpointErr):
		return "model_endpoint"
	default:
		return "internal"
	}
}
