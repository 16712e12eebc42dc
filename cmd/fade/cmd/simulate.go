package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/fade/cmd/fade/internal/config"
	"github.com/go-drift/fade/cmd/fade/internal/sim"
)

func newSimulateCommand(g *globals) *cobra.Command {
	var (
		script string
		until  time.Duration
		frame  time.Duration
		sample time.Duration
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a controller on a simulated clock and print its timeline",
		Long: `Runs a controller on a fake clock, frame by frame, and prints every
scripted event, state transition and auto-advance with its time.

The script is a comma-separated list of <time>:<action> items, where
time is milliseconds or a Go duration and action is show, hide or
unmount. Without a script the controller is shown at zero and, unless it
hides itself, hidden again after the dwell.

Example:
  fade simulate --preset overlay --script "0:show,150:hide" --sample 50ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.resolve()
			if err != nil {
				return err
			}
			events := sim.DefaultScript(r)
			if script != "" {
				if events, err = sim.ParseScript(script); err != nil {
					return fmt.Errorf("invalid --script: %w", err)
				}
			}
			res, err := sim.Run(r, events, sim.Options{
				Until:       until,
				Frame:       frame,
				SampleEvery: sample,
				Logger:      g.logger,
			})
			if err != nil {
				return err
			}
			printTimeline(cmd.OutOrStdout(), r, res)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&script, "script", "s", "", `events such as "0:show,150:hide"`)
	flags.DurationVar(&until, "until", 0, "stop time (default one full cycle)")
	flags.DurationVar(&frame, "frame", 16*time.Millisecond, "simulated frame interval")
	flags.DurationVar(&sample, "sample", 0, "print a snapshot at every multiple of this interval")
	return cmd
}

func describe(r *config.Resolved) string {
	source := "defaults"
	if r.Path != "" {
		source = r.Path
	}
	dwell := "none"
	if r.HasAutoAdvance {
		dwell = r.AutoAdvance.String()
		if r.AutoHide {
			dwell += " then hide"
		}
	}
	return fmt.Sprintf("preset %s (%s): enter %s %s, exit %s %s, loop %s, dwell %s",
		r.Preset, source, r.Enter, r.EnterCurveName, r.Exit, r.ExitCurveName, r.Loop, dwell)
}

func printTimeline(w io.Writer, r *config.Resolved, res *sim.Result) {
	fmt.Fprintln(w, describe(r))
	for _, e := range res.Timeline {
		fmt.Fprintf(w, "%10s  %s\n", e.At, e)
	}
	fmt.Fprintf(w, "final: %s, live handles after unmount: %d\n", res.Final.State, res.LiveAfterUnmount)
}
