package future_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Orochi-Adde/drogon/runtime/future"
)

func TestAwait_ResolvesFromAnotherGoroutine(t *testing.T) {
	v, err := future.Await(func(resolve func(int), reject func(error)) {
		go func() {
			time.Sleep(5 * time.Millisecond)
			resolve(42)
		}()
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAwait_PropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	v, err := future.Await(func(resolve func(string), reject func(error)) {
		go reject(boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}

func TestAwait_SynchronousContinuation(t *testing.T) {
	v, err := future.Await(func(resolve func(string), reject func(error)) {
		resolve("inline")
	})
	require.NoError(t, err)
	assert.Equal(t, "inline", v)
}

func TestAwaiter_FirstContinuationWins(t *testing.T) {
	a := future.NewAwaiter(func(resolve func(int), reject func(error)) {
		resolve(1)
		resolve(2)
		reject(errors.New("late"))
	})
	v, err := a.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAwaiter_StartsOperationOnce(t *testing.T) {
	var calls atomic.Int32
	a := future.NewAwaiter(func(resolve func(int), reject func(error)) {
		calls.Add(1)
		go resolve(7)
	})

	// not started until awaited
	assert.Equal(t, int32(0), calls.Load())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.Await()
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	select {
	case <-a.Done():
	default:
		t.Fatal("awaiter should be resolved")
	}
}

func TestAwaiter_PanicBecomesFailure(t *testing.T) {
	_, err := future.Await(func(resolve func(int), reject func(error)) {
		panic("bad operation")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad operation")
}

func TestAwaiter_NilFailure(t *testing.T) {
	_, err := future.Await(func(resolve func(int), reject func(error)) {
		reject(nil)
	})
	assert.ErrorIs(t, err, future.ErrNilFailure)
}

func TestGo(t *testing.T) {
	res := future.Go(func() (string, error) { return "ok", nil })
	v, err := res.Wait()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	// stored outcome on repeated waits
	v, err = res.Wait()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	res = future.Go(func() (string, error) { panic("oops") })
	_, err = res.Wait()
	assert.ErrorContains(t, err, "oops")
}

func TestCombine(t *testing.T) {
	assert.NoError(t, future.Combine(nil, nil))

	a, b := errors.New("a"), errors.New("b")
	err := future.Combine(a, nil, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, a)
	assert.ErrorIs(t, err, b)
}
