package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestServe(t *testing.T) {
	t.Run("a failing component stops the others and its error is returned", func(t *testing.T) {
		boom := errors.New("broker unreachable")
		stopped := make(chan struct{})
		err := serve(context.Background(),
			func(ctx context.Context) error {
				defer close(stopped)
				return blockUntilDone(ctx)
			},
			func(context.Context) error { return boom },
		)
		require.ErrorIs(t, err, boom)
		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("sibling component was not cancelled")
		}
	})

	t.Run("cancellation is a clean exit", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, serve(ctx, blockUntilDone, blockUntilDone))
	})

	t.Run("no components returns immediately", func(t *testing.T) {
		assert.NoError(t, serve(context.Background()))
	})
}
