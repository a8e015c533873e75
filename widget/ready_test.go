package widget

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyResolvesOnce(t *testing.T) {
	r := NewReady()
	assert.False(t, r.Resolved())

	require.NoError(t, r.Resolve(Info{Provider: "crisp"}))
	assert.ErrorIs(t, r.Resolve(Info{Provider: "other"}), ErrAlreadyResolved)
	assert.True(t, r.Resolved())

	info, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "crisp", info.Provider)
}

func TestReadyWaitHonoursContext(t *testing.T) {
	r := NewReady()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSyncWaitsForReady(t *testing.T) {
	r := NewReady()
	var pushed atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- Sync(context.Background(), r, PusherFunc(func(_ context.Context, v Visitor) error {
			pushed.Add(1)
			return nil
		}), Visitor{ID: "user-1"})
	}()

	assert.Equal(t, int32(0), pushed.Load())
	require.NoError(t, r.Resolve(Info{Provider: "crisp"}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sync did not finish")
	}
	assert.Equal(t, int32(1), pushed.Load())
}

func TestSyncSkipsAnonymousVisitor(t *testing.T) {
	err := Sync(context.Background(), NewReady(), PusherFunc(func(context.Context, Visitor) error {
		return errors.New("should not push")
	}), Visitor{})
	assert.NoError(t, err)
}

func TestSyncReportsTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := Sync(ctx, NewReady(), PusherFunc(func(context.Context, Visitor) error { return nil }), Visitor{ID: "u"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
