package services

import (
	"context"
	"sync"
	"time"
)

// fakeClock is a manually-advanced clock so tests simulate elapsed time
// instead of sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeSMS records dispatched PINs. Set err to simulate a delivery failure.
type fakeSMS struct {
	mu   sync.Mutex
	sent []sentPin
	err  error
}

type sentPin struct {
	phone string
	pin   string
}

func (f *fakeSMS) SendPin(_ context.Context, phone string, pin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentPin{phone: phone, pin: pin})
	return nil
}
