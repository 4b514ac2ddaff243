package app

import (
	"context"
	"errors"
	"time"
)

// ErrFrameLimit is returned by a FrameLimit scheduler once its budget is
// spent. Run treats it as a normal stop.
var ErrFrameLimit = errors.New("frame limit reached")

// Scheduler paces the render loop. Next blocks until the next frame is due.
type Scheduler interface {
	Next(ctx context.Context) error
}

// TickerScheduler schedules frames at a fixed rate
type TickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler creates a scheduler firing fps times per second. A
// non-positive fps selects 60.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = 60
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

// Next waits for the next tick
func (s *TickerScheduler) Next(ctx context.Context) error {
	select {
	case <-s.ticker.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop releases the ticker
func (s *TickerScheduler) Stop() {
	s.ticker.Stop()
}

// FrameLimit wraps a scheduler and stops after N frames
type FrameLimit struct {
	Scheduler
	remaining int
}

// NewFrameLimit allows at most frames frames from s
func NewFrameLimit(s Scheduler, frames int) *FrameLimit {
	return &FrameLimit{Scheduler: s, remaining: frames}
}

// Next waits on the wrapped scheduler until the budget is spent
func (f *FrameLimit) Next(ctx context.Context) error {
	if f.remaining <= 0 {
		return ErrFrameLimit
	}
	if err := f.Scheduler.Next(ctx); err != nil {
		return err
	}
	f.remaining--
	return nil
}

// Run is the render loop. Each iteration waits for the scheduler, then
// applies completed loads, updates the controls and renders. Load and
// render failures never end the loop; it stops when ctx is cancelled (nil
// is returned) or the scheduler fails.
func (a *App) Run(ctx context.Context, sched Scheduler) error {
	a.logger.Noticef("render loop started (%d assets pending)", a.Pending())

	for {
		if err := sched.Next(ctx); err != nil {
			if errors.Is(err, ErrFrameLimit) || ctx.Err() != nil {
				a.logger.Noticef("render loop stopped after %d frames", a.Frames())
				return nil
			}
			return err
		}
		a.Frame(ctx)
	}
}
