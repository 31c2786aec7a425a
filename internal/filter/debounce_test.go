package filter

import (
	"sync"
	"testing"
	"time"
)

type captor struct {
	mu     sync.Mutex
	values []string
}

func (c *captor) apply(v string) {
	c.mu.Lock()
	c.values = append(c.values, v)
	c.mu.Unlock()
}

func (c *captor) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.values...)
}

func TestDebouncerLatestValueWins(t *testing.T) {
	c := &captor{}
	d := NewDebouncer(30*time.Millisecond, c.apply)

	d.Update("d")
	d.Update("da")
	d.Update("data")

	time.Sleep(100 * time.Millisecond)

	got := c.snapshot()
	if len(got) != 1 || got[0] != "data" {
		t.Errorf("applied values = %v, want [data]", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	c := &captor{}
	d := NewDebouncer(20*time.Millisecond, c.apply)

	d.Update("data")
	d.Cancel()

	time.Sleep(80 * time.Millisecond)
	if got := c.snapshot(); len(got) != 0 {
		t.Errorf("cancelled update was applied: %v", got)
	}
}

func TestDebouncerFlush(t *testing.T) {
	c := &captor{}
	d := NewDebouncer(time.Hour, c.apply)

	d.Update("data")
	d.Flush()

	if got := c.snapshot(); len(got) != 1 || got[0] != "data" {
		t.Errorf("flush did not apply pending value: %v", got)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if got := c.snapshot(); len(got) != 1 {
		t.Errorf("idle flush applied a value: %v", got)
	}
}

func TestDebouncerSeparateBursts(t *testing.T) {
	c := &captor{}
	d := NewDebouncer(20*time.Millisecond, c.apply)

	d.Update("first")
	time.Sleep(80 * time.Millisecond)
	d.Update("second")
	time.Sleep(80 * time.Millisecond)

	got := c.snapshot()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("applied values = %v, want [first second]", got)
	}
}
