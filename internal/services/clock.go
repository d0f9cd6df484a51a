package services

import (
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

// MonotonicClock hands out strictly increasing UTC timestamps at microsecond
// resolution, the precision Postgres keeps. Two transactions recorded by the
// same process never share a created_at.
type MonotonicClock struct {
	last atomic.Int64
	now  func() time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

func (c *MonotonicClock) Now() time.Time {
	for {
		next := c.now().UnixMicro()
		last := c.last.Load()
		if next <= last {
			next = last + 1
		}
		if c.last.CompareAndSwap(last, next) {
			return time.UnixMicro(next).UTC()
		}
	}
}
