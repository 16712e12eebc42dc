package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/fade/cmd/fade/internal/term"
	"github.com/go-drift/fade/cmd/fade/internal/watch"
	"github.com/go-drift/fade/pkg/animation"
	"github.com/go-drift/fade/pkg/visibility"
)

// reloadDelay coalesces the burst of events an editor save produces.
const reloadDelay = 200 * time.Millisecond

func newPreviewCommand(g *globals) *cobra.Command {
	var (
		watchConfig bool
		interval    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the animation live in the terminal",
		Long: `Shows the controller live in the terminal.

Keys:
  space, enter   toggle visibility
  r              remount (reloads the config)
  q, esc         quit

With --watch the controller is remounted whenever the config file
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Fail on a broken config before taking over the terminal.
			if _, err := g.resolve(); err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize terminal: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runPreview(ctx, screen, g, previewOptions{watch: watchConfig, interval: interval})
		},
	}
	cmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "remount when the config file changes")
	cmd.Flags().DurationVar(&interval, "interval", animation.DefaultFrameInterval, "frame interval")
	return cmd
}

type previewOptions struct {
	watch    bool
	interval time.Duration
}

// previewSession is the state owned by the frame loop goroutine.
type previewSession struct {
	g         *globals
	scheduler *animation.Scheduler
	screen    tcell.Screen

	ctrl      *visibility.Controller
	presenter *term.Presenter
	status    string
	reload    animation.TimerHandle
}

// mount (re)loads the config and mounts a visible controller. A config
// error keeps the previous controller.
func (s *previewSession) mount() {
	r, err := s.g.resolve()
	if err != nil {
		s.status = err.Error()
		s.g.logger.Warn("reload failed", zap.Error(err))
		return
	}
	cfg := r.Build(func() { s.status = "auto-advanced" })
	ctrl, err := visibility.Mount(cfg, true, s.scheduler, s.scheduler, visibility.WithLogger(s.g.logger))
	if err != nil {
		s.status = err.Error()
		return
	}
	if s.ctrl != nil {
		s.ctrl.Unmount()
	}
	s.ctrl = ctrl
	s.presenter = term.NewPresenter(s.screen, r.Style(), r.Foreground)
	s.status = describe(r)
}

func (s *previewSession) toggle() {
	if s.ctrl != nil {
		s.ctrl.SetVisible(!s.ctrl.Intent())
	}
}

// configChanged remounts once the file has been quiet for reloadDelay.
func (s *previewSession) configChanged() {
	s.scheduler.CancelTimer(s.reload)
	s.reload = s.scheduler.ScheduleOnce(reloadDelay, func() {
		s.reload = animation.TimerHandle{}
		s.mount()
	})
}

func (s *previewSession) draw() {
	if s.ctrl == nil || s.presenter == nil {
		return
	}
	s.presenter.Draw(s.ctrl.Snapshot(), "space: toggle  r: remount  q: quit  | "+s.status)
}

func (s *previewSession) close() {
	s.scheduler.CancelTimer(s.reload)
	if s.ctrl != nil {
		s.ctrl.Unmount()
	}
}

// runPreview drives the session until ctx is done or the user quits.
// It finalizes screen before returning.
func runPreview(ctx context.Context, screen tcell.Screen, g *globals, opts previewOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := animation.NewScheduler(nil)
	loop := animation.NewFrameLoop(scheduler, opts.interval, g.logger)
	s := &previewSession{g: g, scheduler: scheduler, screen: screen}
	s.mount()
	loop.OnFrame = s.draw

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		// Run returns only once egCtx is done, so its error says nothing new.
		_ = loop.Run(egCtx)
		s.close()
		// PollEvent returns nil once the screen is finalized.
		screen.Fini()
		return nil
	})

	eg.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch term.KeyCommand(ev) {
				case term.CommandQuit:
					cancel()
					return nil
				case term.CommandToggle:
					loop.Post(s.toggle)
				case term.CommandRemount:
					loop.Post(s.mount)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	})

	if opts.watch {
		eg.Go(func() error {
			return watch.File(egCtx, g.configPath, g.logger, func() {
				loop.Post(s.configChanged)
			})
		})
	}

	return eg.Wait()
}
