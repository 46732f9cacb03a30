package main

import "math"

type Lifecycle int

const (
	LifecycleIdle Lifecycle = iota
	LifecyclePending
	LifecycleDone
	LifecycleFailed
)

func (l Lifecycle) String() string {
	switch l {
	case LifecyclePending:
		return "deleting"
	case LifecycleDone:
		return "deleted"
	case LifecycleFailed:
		return "failed"
	default:
		return "ready"
	}
}

// Entry is one discovered directory. Path is its identity.
type Entry struct {
	Path     string
	RelPath  string
	Target   string
	Category string
	Size     uint64
	On       bool
	State    Lifecycle
	Reason   string
}

func (e Entry) Idle() bool { return e.State == LifecycleIdle }

// Counter is a running (count, bytes) aggregate.
type Counter struct {
	Count int
	Bytes uint64
}

func (c *Counter) Add(size uint64) {
	if c.Count < math.MaxInt {
		c.Count++
	}
	if c.Bytes > math.MaxUint64-size {
		c.Bytes = math.MaxUint64
		return
	}
	c.Bytes += size
}

// Remove takes one item of the given size out of the counter. It refuses and
// reports false when that would drive either field below zero.
func (c *Counter) Remove(size uint64) bool {
	if c.Count == 0 || c.Bytes < size {
		return false
	}
	c.Count--
	c.Bytes -= size
	return true
}
