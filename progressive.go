package scrawl

import (
	"context"
	"time"
)

// defaultChunkSize is the number of glyphs painted between scheduler
// yields.
const defaultChunkSize = 64

// Scheduler controls how a render shares time with its host. The
// renderer calls Yield between glyph chunks; a returned error aborts
// the render.
type Scheduler interface {
	Yield(ctx context.Context) error
}

// immediateScheduler never pauses; it only observes cancellation.
type immediateScheduler struct{}

func (immediateScheduler) Yield(ctx context.Context) error { return ctx.Err() }

// FrameScheduler pauses between chunks so long renders stay responsive
// in interactive hosts.
type FrameScheduler struct {
	// Interval is the pause per yield. Zero behaves like the immediate
	// scheduler.
	Interval time.Duration
}

func (s FrameScheduler) Yield(ctx context.Context) error {
	if s.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
