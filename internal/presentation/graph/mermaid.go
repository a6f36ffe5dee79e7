package graph

import (
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/occlusion/pkg/domain"
)

// Overlay marks the phases a run has already gone through.
type Overlay struct {
	Visited []string
	Current string
}

// OverlayFromEvents builds an overlay from phase enter events, in order.
// The last event is the current phase.
func OverlayFromEvents(events []domain.PhaseEvent) *Overlay {
	o := &Overlay{}
	for _, e := range events {
		if e.Type != domain.EventPhaseEnter {
			continue
		}
		id := NodeID(e.Phase, e.ImageIndex)
		o.Visited = append(o.Visited, id)
		o.Current = id
	}
	return o
}

// NodeID names the diagram node of a phase. cursor is the image cursor when the
// phase was entered: during a slide it already points past the image on screen.
func NodeID(phase domain.Phase, cursor int) string {
	switch phase {
	case domain.PhaseSlideOut, domain.PhaseSlideIn:
		return fmt.Sprintf("%s_%d", phase, cursor-1)
	default:
		return string(phase)
	}
}

// GenerateMermaid produces a Mermaid flowchart of one trial's timeline.
// It applies semantic styling:
// - Idle and Done: ((Circle))
// - Delays: [/Parallelogram/]
// - Slides: [Rectangle], annotated with the target offset and duration
// The edge into each slide_out names the motion table in use.
func GenerateMermaid(trial domain.TrialConfig, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	node := func(id, opener, label, closer string) {
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, label, closer))
	}
	edge := func(from, to, label string) {
		arrow := "-->"
		if label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(label, "\"", "'"))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(from), arrow, sanitizeMermaidID(to)))
	}

	node(string(domain.PhaseIdle), "((", "idle", "))")
	prev := string(domain.PhaseIdle)

	if len(trial.Stimuli) > 0 {
		pre := string(domain.PhasePreDelay)
		node(pre, "[/", fmt.Sprintf("pre_delay <br/> ⏱️ %s", trial.PreMovement()), "/]")
		edge(prev, pre, "")
		prev = pre
	}

	tables := domain.MotionTables(trial)
	table := trial.InitialDirection.TableIndex()
	for i, src := range trial.Stimuli {
		steps := tables[table]
		out := NodeID(domain.PhaseSlideOut, i+1)
		in := NodeID(domain.PhaseSlideIn, i+1)

		node(out, "[", fmt.Sprintf("%s <br/> x=%g ⏱️ %s", path.Base(src), steps[0].X, steps[0].Duration), "]")
		node(in, "[", fmt.Sprintf("%s <br/> x=%g ⏱️ %s", path.Base(src), steps[1].X, steps[1].Duration), "]")
		edge(prev, out, fmt.Sprintf("table %d", table))
		edge(out, in, "")

		prev = in
		table = 1 - table
	}

	post := string(domain.PhasePostDelay)
	node(post, "[/", fmt.Sprintf("post_delay <br/> ⏱️ %s", trial.PostTrial()), "/]")
	edge(prev, post, "write data")
	node(string(domain.PhaseDone), "((", "done", "))")
	edge(post, string(domain.PhaseDone), "next")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
