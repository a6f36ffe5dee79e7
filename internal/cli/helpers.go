package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/occlusion"
	"github.com/aretw0/occlusion/internal/config"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/observability"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/runner"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth is the column count of w, or fallback when it is not a terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// newRegistry registers the occlusion plugin, timed on clk and logging through logger.
func newRegistry(clk ports.Clock, logger *slog.Logger, hooks ...domain.LifecycleHooks) *registry.Registry {
	hooks = append(hooks, observability.LogHooks(logger))
	return registry.NewRegistry(occlusion.New(
		occlusion.WithClock(clk),
		occlusion.WithLogger(logger),
		occlusion.WithLifecycleHooks(observability.CombineHooks(hooks...)),
	))
}

// Plan is an experiment file with every trial resolved.
type Plan struct {
	Experiment *config.Experiment
	Trials     []domain.TrialConfig
}

// LoadPlan reads the experiment at path and creates its trials.
func LoadPlan(path string, r *runner.Runner) (*Plan, error) {
	exp, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	trials, err := r.Expand(exp.Trials)
	if err != nil {
		return nil, err
	}
	return &Plan{Experiment: exp, Trials: trials}, nil
}
