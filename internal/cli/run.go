package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/occlusion/internal/presentation/tui"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/adapters/terminal"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	ExperimentPath string
	Headless       bool
	SessionID      string
	Store          StoreOptions
	Quiet          bool
}

// Run loads an experiment and presents every trial, storing one record per trial.
// Headless runs (or runs whose output is not a terminal) use a recording surface
// on a virtual clock and finish instantly.
func Run(ctx context.Context, opts RunOptions, logger *slog.Logger, stdout io.Writer) error {
	headless := opts.Headless || !IsTerminal(stdout)
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	backend, err := OpenStore(ctx, opts.Store)
	if err != nil {
		return err
	}
	defer backend.Close()

	var clk ports.Clock = clock.NewSystem()
	if headless {
		clk = clock.NewVirtual(time.Now())
	}

	r := runner.NewRunner(newRegistry(clk, logger),
		runner.WithStore(backend.Store),
		runner.WithLogger(logger),
		runner.WithSessionID(opts.SessionID),
		runner.WithClock(clk),
	)

	plan, err := LoadPlan(opts.ExperimentPath, r)
	if err != nil {
		return err
	}
	logger.Info("experiment loaded", "name", plan.Experiment.Name, "trials", len(plan.Trials), "headless", headless)

	var surface ports.Surface
	if headless {
		surface = memory.NewSurface(memory.WithClock(clk))
	} else {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		defer screen.Fini()

		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go watchKeys(screen, cancel)

		surface = terminal.NewSurface(screen, terminal.WithClock(clk))
	}

	var report runner.Report
	err = backend.Sessions(logger).WithLock(ctx, opts.SessionID, func(ctx context.Context) error {
		report, err = r.Run(ctx, surface, plan.Trials)
		return err
	})

	if errors.Is(err, context.Canceled) {
		if !opts.Quiet {
			printSystemMessage(stdout, "Interrupted after %d of %d trials (session %s).", len(report.Results), len(plan.Trials), opts.SessionID)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if !opts.Quiet {
		tui.PrintRunSummary(stdout, report.SessionID, report.Results, report.Elapsed)
	}
	return nil
}

// watchKeys cancels the run on Escape or Ctrl+C. It returns once the screen is finalized.
func watchKeys(screen tcell.Screen, cancel context.CancelFunc) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				cancel()
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}
