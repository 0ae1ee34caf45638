package game

import (
	"sync"
	"time"
)

// Countdown fires onTick once per second with the seconds remaining and
// onExpire when it reaches zero. Stop cancels any pending fire. A
// stopped Countdown never calls back again, but a callback already in
// flight may still run: owners must check handle identity before acting.
type Countdown struct {
	mu        sync.Mutex
	timer     *time.Timer
	remaining int
	stopped   bool
	onTick    func(remaining int)
	onExpire  func()
}

func StartCountdown(seconds int, onTick func(remaining int), onExpire func()) *Countdown {
	c := &Countdown{
		remaining: seconds,
		onTick:    onTick,
		onExpire:  onExpire,
	}
	c.timer = time.AfterFunc(time.Second, c.step)
	return c
}

func (c *Countdown) step() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	c.remaining--
	remaining := c.remaining

	if remaining <= 0 {
		c.stopped = true
		c.mu.Unlock()
		c.onExpire()
		return
	}

	c.timer.Reset(time.Second)
	c.mu.Unlock()

	c.onTick(remaining)
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
	}
}

// Delay is a cancellable one-shot. Same identity caveat as Countdown.
type Delay struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func StartDelay(d time.Duration, fn func()) *Delay {
	dl := &Delay{}
	dl.timer = time.AfterFunc(d, func() {
		dl.mu.Lock()
		if dl.stopped {
			dl.mu.Unlock()
			return
		}
		dl.stopped = true
		dl.mu.Unlock()

		fn()
	})
	return dl
}

func (d *Delay) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
