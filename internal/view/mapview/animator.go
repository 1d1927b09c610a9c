package mapview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Animation timing.
const (
	FrameInterval = 300 * time.Millisecond
	RestartDelay  = 2 * time.Second
)

// Player is what the animator steps through.
type Player interface {
	Dates() []string
	ShowDataAtDate(date string) bool
}

// Animator plays every date in order. In autodrive mode the animation
// starts over after RestartDelay; otherwise it stops on the newest date.
type Animator struct {
	player    Player
	clock     clockwork.Clock
	autodrive bool
	logger    *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewAnimator creates a stopped animator.
func NewAnimator(player Player, clock clockwork.Clock, autodrive bool, logger *slog.Logger) *Animator {
	return &Animator{player: player, clock: clock, autodrive: autodrive, logger: logger}
}

// Running reports whether an animation is playing.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Start begins playing in the background. It returns false if an animation
// is already running.
func (a *Animator) Start(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return false
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.running = true
	go a.run(ctx, cancel, a.done)
	return true
}

// Stop halts the animation and waits for it to exit.
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Toggle starts a stopped animation or stops a running one. It reports
// whether the animation is running afterwards.
func (a *Animator) Toggle(ctx context.Context) bool {
	if a.Start(ctx) {
		return true
	}
	a.Stop()
	return false
}

func (a *Animator) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}) {
	defer func() {
		cancel()
		a.mu.Lock()
		a.running = false
		a.cancel = nil
		a.mu.Unlock()
		close(done)
	}()

	for {
		dates := a.player.Dates()
		a.logger.Debug("animation started", "frames", len(dates))
		for _, date := range dates {
			a.player.ShowDataAtDate(date)
			if !a.sleep(ctx, FrameInterval) {
				return
			}
		}
		if !a.autodrive {
			return
		}
		if !a.sleep(ctx, RestartDelay) {
			return
		}
	}
}

func (a *Animator) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-a.clock.After(d):
		return true
	}
}
