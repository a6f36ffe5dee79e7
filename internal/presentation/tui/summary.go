package tui

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/muesli/termenv"
)

// DescribeExperiment renders an experiment as markdown: one table row per trial
// and the total expected running time.
func DescribeExperiment(name, description string, trials []domain.TrialConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if description != "" {
		fmt.Fprintf(&sb, "%s\n\n", description)
	}

	sb.WriteString("| # | Stimuli | Cycle | First move | Occluder | Canvas | Expected |\n")
	sb.WriteString("|---|---|---|---|---|---|---|\n")

	var total time.Duration
	var images int
	for i, t := range trials {
		total += t.ExpectedDuration()
		images += len(t.Stimuli)

		occluder := "no"
		if t.OccludeCenter {
			occluder = "yes"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %s |\n",
			i, stimuliList(t.Stimuli), t.Cycle(), t.InitialDirection, occluder, t.CanvasSize, t.ExpectedDuration())
	}

	fmt.Fprintf(&sb, "\n**%d trials**, **%d images**, about **%s** in total.\n", len(trials), images, total)
	return sb.String()
}

func stimuliList(stimuli []string) string {
	const limit = 4
	names := make([]string, 0, limit)
	for i, s := range stimuli {
		if i == limit {
			names = append(names, fmt.Sprintf("… +%d", len(stimuli)-limit))
			break
		}
		names = append(names, "`"+path.Base(s)+"`")
	}
	return strings.Join(names, ", ")
}

// PrintRunSummary writes a short colored report of a finished run to w.
func PrintRunSummary(w io.Writer, sessionID string, results []domain.TrialResult, elapsed time.Duration) {
	out := termenv.NewOutput(w)
	ok := out.String("✔").Foreground(out.Color("#22c55e"))

	fmt.Fprintf(w, "%s %d trials recorded in %s\n", ok, len(results), elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  session %s\n", out.String(sessionID).Bold())
}
