package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct{ transient bool }

func (s stubClassifier) IsTransient(error) bool { return s.transient }

func fastBackoff(retries int) *ExponentialBackoff {
	return NewExponentialBackoff(retries, WithInitialDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond), WithJitter(0))
}

func TestExecutor_SuccessNeedsOneAttempt(t *testing.T) {
	calls := 0
	err := NewExecutor(stubClassifier{true}, fastBackoff(3)).Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	calls := 0
	boom := errors.New("connection refused")
	err := NewExecutor(stubClassifier{true}, fastBackoff(0)).Execute(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestExecutor_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	var retried []int
	executor := NewExecutor(stubClassifier{true}, fastBackoff(5)).
		WithOnRetry(func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) })

	err := executor.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{0, 1}, retried)
}

func TestExecutor_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := NewExecutor(stubClassifier{true}, fastBackoff(2)).Execute(context.Background(), func(context.Context) error {
		calls++
		return errors.New("still down")
	})
	assert.EqualError(t, err, "still down")
	assert.Equal(t, 3, calls)
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	calls := 0
	err := NewExecutor(stubClassifier{false}, fastBackoff(5)).Execute(context.Background(), func(context.Context) error {
		calls++
		return errors.New("password authentication failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0))
	executor := NewExecutor(stubClassifier{true}, slow).
		WithOnRetry(func(int, error, time.Duration) { cancel() })

	err := executor.Execute(ctx, func(context.Context) error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_WithOnRetryDoesNotMutateOriginal(t *testing.T) {
	base := NewExecutor(stubClassifier{true}, fastBackoff(1))
	clone := base.WithOnRetry(func(int, error, time.Duration) {})
	assert.Nil(t, base.onRetry)
	assert.NotNil(t, clone.onRetry)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(stubClassifier{}, nil) })
}
