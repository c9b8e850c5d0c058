package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunRecordsOutcome(t *testing.T) {
	s := New(zap.NewNop())
	s.Register(Job{Name: "ok", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Interval: time.Hour, Fn: func(context.Context) error { return errors.New("boom") }})

	require.NoError(t, s.Run(context.Background(), "ok"))
	require.EqualError(t, s.Run(context.Background(), "bad"), "boom")
	require.ErrorIs(t, s.Run(context.Background(), "missing"), ErrUnknownJob)

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "bad", items[0].Name)
	assert.Equal(t, StatusReject, items[0].Status)
	assert.Equal(t, "boom", items[0].Message)
	assert.Equal(t, StatusFulfill, items[1].Status)
	assert.NotNil(t, items[1].LastRunAt)
}

func TestStartRunsOnStartAndStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	s := New(zap.NewNop())
	s.Register(Job{
		Name:       "sweep",
		Interval:   time.Hour,
		RunOnStart: true,
		Fn: func(context.Context) error {
			calls.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()
	assert.Equal(t, int32(1), calls.Load())
}
