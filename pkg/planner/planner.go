// Package planner wraps the non-deterministic language-model planner
// behind a uniform Generate(messages) -> text contract with a hard
// wall-clock timeout, so a blocking or hanging provider can never stall
// the orchestrator indefinitely.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Message is one entry in the conversation the planner sees.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Planner is the contract every concrete adapter (remote API, local
// endpoint, scripted test double) implements.
type Planner interface {
	// Generate may block indefinitely; callers that need a bound wrap
	// the planner with NewTimeoutWrapper.
	Generate(ctx context.Context, messages []Message) (string, error)
}

// ProviderTimeout is raised when a Generate call does not return within
// the configured wall-clock timeout. The background worker that was
// racing the rendezvous continues running; its eventual result, if any,
// is discarded.
type ProviderTimeout struct {
	Timeout time.Duration
}

func (e *ProviderTimeout) Error() string {
	return fmt.Sprintf("planner: provider call exceeded timeout of %s", e.Timeout)
}

// UnrecoverableSubstrings is the fixed, pluggable substring set used to
// classify a provider error as unrecoverable (short-circuits the
// invalid-JSON retry budget). It can be replaced by reassigning this
// package variable; OrchestratorConfig has no setting for it.
var UnrecoverableSubstrings = []string{
	"invalid api key",
	"authentication",
	"permission",
	"insufficient_quota",
	"rate limit exceeded",
}

// IsUnrecoverable classifies err using UnrecoverableSubstrings, plus the
// compound "model"+"not found" condition called out in the design.
func IsUnrecoverable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, substr := range UnrecoverableSubstrings {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return strings.Contains(msg, "model") && strings.Contains(msg, "not found")
}

// TimeoutWrapper enforces a hard wall-clock timeout around an inner
// Planner's Generate call using a dedicated goroutine and a single-slot
// buffered channel rendezvous: the main context races the channel
// against the timeout clock, and on timeout abandons the goroutine
// rather than attempting to cancel it.
type TimeoutWrapper struct {
	Inner   Planner
	Timeout time.Duration
}

// NewTimeoutWrapper builds a TimeoutWrapper. A non-positive timeout
// disables the timeout entirely (Generate is called directly).
func NewTimeoutWrapper(inner Planner, timeout time.Duration) *TimeoutWrapper {
	return &TimeoutWrapper{Inner: inner, Timeout: timeout}
}

type generateOutcome struct {
	text string
	err  error
}

func (w *TimeoutWrapper) Generate(ctx context.Context, messages []Message) (string, error) {
	if w.Timeout <= 0 {
		return w.Inner.Generate(ctx, messages)
	}

	outcome := make(chan generateOutcome, 1)
	go func() {
		text, err := w.Inner.Generate(ctx, messages)
		outcome <- generateOutcome{text: text, err: err}
	}()

	select {
	case result := <-outcome:
		return result.text, result.err
	case <-time.After(w.Timeout):
		return "", &ProviderTimeout{Timeout: w.Timeout}
	}
}
