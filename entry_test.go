package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterAddRemove(t *testing.T) {
	var c Counter
	c.Add(100)
	c.Add(50)
	assert.Equal(t, Counter{Count: 2, Bytes: 150}, c)

	assert.True(t, c.Remove(100))
	assert.True(t, c.Remove(50))
	assert.Equal(t, Counter{}, c, "counter returns to zero")
}

func TestCounterRemoveRefusesUnderflow(t *testing.T) {
	var c Counter
	assert.False(t, c.Remove(0), "empty counter")

	c.Add(10)
	assert.False(t, c.Remove(11), "more bytes than held")
	assert.Equal(t, Counter{Count: 1, Bytes: 10}, c)
}

func TestCounterAddSaturates(t *testing.T) {
	c := Counter{Count: 1, Bytes: math.MaxUint64 - 1}
	c.Add(10)
	assert.Equal(t, uint64(math.MaxUint64), c.Bytes)
	assert.Equal(t, 2, c.Count)
}

func TestLifecycleString(t *testing.T) {
	assert.Equal(t, "ready", LifecycleIdle.String())
	assert.Equal(t, "deleting", LifecyclePending.String())
	assert.Equal(t, "deleted", LifecycleDone.String())
	assert.Equal(t, "failed", LifecycleFailed.String())
}
