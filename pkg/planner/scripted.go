package planner

import (
	"context"
	"fmt"
	"time"
)

// Scripted is a deterministic test double: it returns a fixed sequence
// of responses, one per call, optionally sleeping before each one to
// exercise the timeout wrapper. It is the planner used by the
// orchestrator-level end-to-end tests.
type Scripted struct {
	Responses []ScriptedResponse
	calls     int
}

// ScriptedResponse is one scripted turn.
type ScriptedResponse struct {
	// Text is the raw model output to return. Ignored if Err is set.
	Text string
	// Err, if non-nil, is returned instead of Text.
	Err error
	// Sleep delays the response by this duration before returning,
	// letting tests exercise TimeoutWrapper deterministically.
	Sleep time.Duration
}

// NewScripted builds a Scripted planner that replays responses in order.
func NewScripted(responses ...ScriptedResponse) *Scripted {
	return &Scripted{Responses: responses}
}

// Calls returns how many times Generate has been invoked so far.
func (s *Scripted) Calls() int {
	return s.calls
}

func (s *Scripted) Generate(ctx context.Context, messages []Message) (string, error) {
	if s.calls >= len(s.Responses) {
		return "", fmt.Errorf("planner: scripted planner exhausted after %d calls", s.calls)
	}
	resp := s.Responses[s.calls]
	s.calls++

	if resp.Sleep > 0 {
		select {
		case <-time.After(resp.Sleep):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}
