package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFail = errors.New("fail")

func TestSuccess_OnFirstTry(t *testing.T) {
	r := New[string](Options{MaxRetries: 3})

	called := 0
	resp, err := r.Do(context.Background(), func() (string, error) {
		called++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, 1, called)
}

func TestEventuallySucceeds(t *testing.T) {
	r := New[string](Options{
		MaxRetries: 3,
		Strategy:   ExponentialBackoff(1 * time.Millisecond),
	})

	called := 0
	resp, err := r.Do(context.Background(), func() (string, error) {
		called++
		if called < 2 {
			return "", errFail
		}
		return "success", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "success", resp)
	assert.Equal(t, 2, called)
}

func TestAlwaysFails(t *testing.T) {
	r := New[string](Options{
		MaxRetries: 3,
		Strategy:   ExponentialBackoff(1 * time.Millisecond),
	})

	called := 0
	resp, err := r.Do(context.Background(), func() (string, error) {
		called++
		return "", errFail
	})

	require.Error(t, err)
	assert.Equal(t, "", resp)
	assert.Equal(t, 3, called)
}

func TestShouldRetryFalse(t *testing.T) {
	r := New[string](Options{
		MaxRetries:  5,
		Strategy:    ExponentialBackoff(1 * time.Millisecond),
		ShouldRetry: func(err error) bool { return false },
	})

	called := 0
	resp, err := r.Do(context.Background(), func() (string, error) {
		called++
		return "", errFail
	})

	require.Error(t, err)
	assert.Equal(t, "", resp)
	assert.Equal(t, 1, called)
}

func TestContextCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New[string](Options{MaxRetries: 3})
	resp, err := r.Do(ctx, func() (string, error) {
		t.Fatal("function should not have been called")
		return "nope", nil
	})

	require.Error(t, err)
	assert.Equal(t, "", resp)
}

func TestContextCancelledDuringRetry(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	r := New[string](Options{
		MaxRetries: 3,
		Strategy:   ExponentialBackoff(100 * time.Millisecond),
	})

	called := 0
	resp, err := r.Do(ctx, func() (string, error) {
		called++
		return "", errFail
	})

	require.Error(t, err)
	assert.Equal(t, "", resp)
	assert.GreaterOrEqual(t, called, 1)
}

func TestOnRetryCalledBetweenAttempts(t *testing.T) {
	var attempts []int
	r := New[int](Options{
		MaxRetries: 3,
		Strategy:   ConstantBackoff(time.Millisecond),
		OnRetry: func(attempt int, err error) {
			assert.ErrorIs(t, err, errFail)
			attempts = append(attempts, attempt)
		},
	})

	_, err := r.Do(context.Background(), func() (int, error) {
		return 0, errFail
	})

	require.ErrorIs(t, err, errFail)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDoErr(t *testing.T) {
	called := 0
	err := DoErr(context.Background(), Options{MaxRetries: 2, Strategy: ConstantBackoff(time.Millisecond)}, func() error {
		called++
		if called == 1 {
			return errFail
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, called)
}

func TestExponentialJitterBackoffBounds(t *testing.T) {
	strategy := ExponentialJitterBackoff(100*time.Millisecond, 300*time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		d := strategy(attempt)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 300*time.Millisecond)
	}
	assert.Equal(t, time.Duration(1), ExponentialJitterBackoff(1, 1)(1))
}
