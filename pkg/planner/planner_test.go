package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutWrapper_ReturnsInnerResultWithinBudget(t *testing.T) {
	inner := NewScripted(ScriptedResponse{Text: `{"action":"finish","answer":"done"}`})
	wrapper := NewTimeoutWrapper(inner, time.Second)

	text, err := wrapper.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `{"action":"finish","answer":"done"}`, text)
}

func TestTimeoutWrapper_TimesOutOnSlowProvider(t *testing.T) {
	inner := NewScripted(ScriptedResponse{Text: "too slow", Sleep: 200 * time.Millisecond})
	wrapper := NewTimeoutWrapper(inner, 20*time.Millisecond)

	started := time.Now()
	_, err := wrapper.Generate(context.Background(), nil)
	elapsed := time.Since(started)

	require.Error(t, err)
	var timeoutErr *ProviderTimeout
	require.ErrorAs(t, err, &timeoutErr)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestTimeoutWrapper_DisabledWhenNonPositive(t *testing.T) {
	inner := NewScripted(ScriptedResponse{Text: "ok"})
	wrapper := NewTimeoutWrapper(inner, 0)

	text, err := wrapper.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestIsUnrecoverable(t *testing.T) {
	assert.True(t, IsUnrecoverable(errors.New("Invalid API Key supplied")))
	assert.True(t, IsUnrecoverable(errors.New("model gpt-9 not found")))
	assert.False(t, IsUnrecoverable(errors.New("temporary network error")))
	assert.False(t, IsUnrecoverable(nil))
}

func TestScripted_ExhaustionError(t *testing.T) {
	s := NewScripted(ScriptedResponse{Text: "only one"})
	_, err := s.Generate(context.Background(), nil)
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), nil)
	require.Error(t, err)
}
