package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/occlusion/internal/presentation/graph"
	"github.com/aretw0/occlusion/internal/presentation/tui"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/runner"
)

// Validate resolves every trial of the experiment at path without running it.
func Validate(path string, logger *slog.Logger, stdout io.Writer) error {
	r := runner.NewRunner(newRegistry(clock.NewSystem(), logger), runner.WithLogger(logger))
	plan, err := LoadPlan(path, r)
	if err != nil {
		return err
	}

	var total int
	for _, t := range plan.Trials {
		total += len(t.Stimuli)
	}
	printSystemMessage(stdout, "%s is valid: %d trials, %d images.", plan.Experiment.Name, len(plan.Trials), total)
	return nil
}

// DescribeOptions configures the describe command.
type DescribeOptions struct {
	ExperimentPath string
	// Graph prints a Mermaid diagram of one trial instead of the summary.
	Graph bool
	Trial int
	// Raw skips markdown rendering.
	Raw bool
}

// Describe prints a summary of an experiment: timings per trial and the expected total.
func Describe(opts DescribeOptions, logger *slog.Logger, stdout io.Writer) error {
	r := runner.NewRunner(newRegistry(clock.NewSystem(), logger), runner.WithLogger(logger))
	plan, err := LoadPlan(opts.ExperimentPath, r)
	if err != nil {
		return err
	}

	if opts.Graph {
		if opts.Trial < 0 || opts.Trial >= len(plan.Trials) {
			return fmt.Errorf("trial %d out of range (experiment has %d)", opts.Trial, len(plan.Trials))
		}
		_, err := fmt.Fprint(stdout, graph.GenerateMermaid(plan.Trials[opts.Trial], nil))
		return err
	}

	md := tui.DescribeExperiment(plan.Experiment.Name, plan.Experiment.Description, plan.Trials)
	if opts.Raw || !IsTerminal(stdout) {
		_, err := fmt.Fprint(stdout, md)
		return err
	}

	render, err := tui.NewRenderer(TerminalWidth(stdout, 80))
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = fmt.Fprint(stdout, out)
	return err
}
