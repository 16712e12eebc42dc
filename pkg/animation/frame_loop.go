package animation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/fade/pkg/errors"
)

// DefaultFrameInterval is roughly one frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameLoop drives a [Scheduler] in real time on a single goroutine.
//
// Everything that touches the scheduler or the controllers it drives
// should run on the loop goroutine: either inside scheduler callbacks or
// through [FrameLoop.Post].
type FrameLoop struct {
	// OnFrame runs on the loop goroutine after every Step (optional).
	OnFrame func()

	scheduler *Scheduler
	interval  time.Duration
	posts     chan func()
	done      chan struct{}
	logger    *zap.Logger
}

// NewFrameLoop creates a loop stepping s every interval. A non-positive
// interval means [DefaultFrameInterval]; a nil logger discards output.
func NewFrameLoop(s *Scheduler, interval time.Duration, logger *zap.Logger) *FrameLoop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FrameLoop{
		scheduler: s,
		interval:  interval,
		posts:     make(chan func()),
		done:      make(chan struct{}),
		logger:    logger,
	}
}

// Run steps the scheduler until ctx is done. It returns ctx.Err().
// Run must be called at most once.
func (l *FrameLoop) Run(ctx context.Context) error {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("frame loop started", zap.Duration("interval", l.interval))
	defer l.logger.Debug("frame loop stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.posts:
			l.runPosted(fn)
		case <-ticker.C:
			l.frame()
		}
	}
}

func (l *FrameLoop) runPosted(fn func()) {
	defer errors.Recover("animation.FrameLoop.Post")
	fn()
}

func (l *FrameLoop) frame() {
	defer errors.Recover("animation.FrameLoop.frame")
	l.scheduler.Step()
	if l.OnFrame != nil {
		l.OnFrame()
	}
}

// Post runs fn on the loop goroutine. It blocks until the loop accepts fn
// and returns false if the loop has stopped.
func (l *FrameLoop) Post(fn func()) bool {
	select {
	case l.posts <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when Run returns.
func (l *FrameLoop) Done() <-chan struct{} {
	return l.done
}
