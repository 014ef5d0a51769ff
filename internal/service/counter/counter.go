// Package counter holds the process-local sequence handed out by the counter service.
package counter

import "sync"

// Counter hands out 1, 2, 3, ... exactly once each. The zero value is not
// usable; construct with New.
type Counter struct {
	mu   sync.Mutex
	next uint64
}

// New returns a Counter whose first Next returns 1.
func New() *Counter {
	return &Counter{next: 1}
}

// Next returns the current value and advances the counter under one lock, so
// concurrent callers never observe the same value.
func (c *Counter) Next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next
	c.next = v + 1
	return v
}

// Peek reports the value the next call to Next will return without consuming it.
func (c *Counter) Peek() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
