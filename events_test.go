package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusFIFO(t *testing.T) {
	bus := newEventBus()
	ctx := context.Background()

	require.NoError(t, bus.Send(ScanStarted{Root: "/work"}))
	require.NoError(t, bus.Send(ScanProgress{Visited: 1}))
	require.NoError(t, bus.Send(ScanProgress{Visited: 2}))
	assert.Equal(t, 3, bus.Len())

	for _, want := range []Event{ScanStarted{Root: "/work"}, ScanProgress{Visited: 1}, ScanProgress{Visited: 2}} {
		got, err := bus.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, bus.Len())
}

func TestEventBusNextWaitsForSend(t *testing.T) {
	bus := newEventBus()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = bus.Send(Tick{})
	}()

	ev, err := bus.Next(ctx)
	require.NoError(t, err)
	assert.IsType(t, Tick{}, ev)
}

func TestEventBusCloseDrainsThenFails(t *testing.T) {
	bus := newEventBus()
	require.NoError(t, bus.Send(Deleted{Path: "/a"}))
	bus.Close()
	bus.Close()

	assert.ErrorIs(t, bus.Send(Deleted{Path: "/b"}), errBusClosed)

	ev, err := bus.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Deleted{Path: "/a"}, ev)

	_, err = bus.Next(context.Background())
	assert.ErrorIs(t, err, errBusClosed)
}

func TestEventBusNextHonoursContext(t *testing.T) {
	bus := newEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bus.Next(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEventBusConcurrentProducers(t *testing.T) {
	bus := newEventBus()
	const producers, perProducer = 4, 250

	for p := range producers {
		go func() {
			for i := range perProducer {
				_ = bus.Send(ScanProgress{Visited: uint64(p*perProducer + i)})
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	last := map[int]int{}
	for range producers * perProducer {
		ev, err := bus.Next(ctx)
		require.NoError(t, err)
		v := int(ev.(ScanProgress).Visited)
		p, i := v/perProducer, v%perProducer
		if prev, ok := last[p]; ok {
			assert.Greater(t, i, prev, "per-producer order")
		}
		last[p] = i
	}
}

func TestRunClockEmitsUntilCancelled(t *testing.T) {
	bus := newEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runClock(ctx, 5*time.Millisecond, bus.Send, testLogger())
		close(done)
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	for range 2 {
		ev, err := bus.Next(waitCtx)
		require.NoError(t, err)
		assert.IsType(t, Tick{}, ev)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clock did not stop")
	}
}

func TestRunClockStopsWhenBusCloses(t *testing.T) {
	bus := newEventBus()
	bus.Close()
	done := make(chan struct{})
	go func() {
		runClock(context.Background(), time.Millisecond, bus.Send, testLogger())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("clock kept running after bus closed")
	}
}
