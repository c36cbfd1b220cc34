package progress

import (
	"context"
	"errors"
	"sync"
	"time"
)

// countingKV wraps a MemoryKV and counts writes.
type countingKV struct {
	*MemoryKV
	mu     sync.Mutex
	writes int
}

func newCountingKV() *countingKV {
	return &countingKV{MemoryKV: NewMemoryKV()}
}

func (c *countingKV) Set(ctx context.Context, slot string, payload []byte) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.MemoryKV.Set(ctx, slot, payload)
}

func (c *countingKV) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// brokenKV fails every call.
type brokenKV struct{}

var errBroken = errors.New("backend down")

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenKV) Set(context.Context, string, []byte) error   { return errBroken }

// fakeClock returns successive instants one minute apart.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}
