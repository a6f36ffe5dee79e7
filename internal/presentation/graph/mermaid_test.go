package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/occlusion/internal/presentation/graph"
	"github.com/aretw0/occlusion/pkg/domain"
)

func trial(direction domain.Direction, stimuli ...string) domain.TrialConfig {
	c := domain.DefaultTrialConfig()
	c.Stimuli = stimuli
	c.InitialDirection = direction
	return c
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		trial    domain.TrialConfig
		contains []string
		excludes []string
	}{
		{
			name:  "Terminal Phase Shapes",
			trial: trial(domain.DirectionLeft, "a.png"),
			contains: []string{
				`idle(("idle"))`,
				`done(("done"))`,
				`post_delay -- "next" --> done`,
			},
		},
		{
			name:  "Delays",
			trial: trial(domain.DirectionLeft, "a.png"),
			contains: []string{
				`pre_delay[/"pre_delay <br/> ⏱️ 500ms"/]`,
				`post_delay[/"post_delay <br/> ⏱️ 1s"/]`,
				`slide_in_0 -- "write data" --> post_delay`,
			},
		},
		{
			name:  "Tables Alternate From The Right",
			trial: trial(domain.DirectionRight, "img/a.png", "img/b.png"),
			contains: []string{
				`pre_delay -- "table 0" --> slide_out_0`,
				`slide_out_0["a.png <br/> x=300 ⏱️ 500ms"]`,
				`slide_in_0["a.png <br/> x=150 ⏱️ 500ms"]`,
				`slide_in_0 -- "table 1" --> slide_out_1`,
				`slide_out_1["b.png <br/> x=0 ⏱️ 500ms"]`,
			},
		},
		{
			name:     "No Stimuli Skips The Slides",
			trial:    trial(domain.DirectionLeft),
			contains: []string{`idle -- "write data" --> post_delay`},
			excludes: []string{"pre_delay[", "slide_out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.trial, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnwanted substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	enter := func(p domain.Phase, cursor int) domain.PhaseEvent {
		return domain.PhaseEvent{
			EventBase:  domain.EventBase{Type: domain.EventPhaseEnter, Timestamp: time.Unix(0, 0)},
			Phase:      p,
			ImageIndex: cursor,
		}
	}
	events := []domain.PhaseEvent{
		enter(domain.PhaseIdle, 0),
		enter(domain.PhasePreDelay, 0),
		{EventBase: domain.EventBase{Type: domain.EventPhaseLeave}, Phase: domain.PhasePreDelay},
		enter(domain.PhaseSlideOut, 1),
	}

	overlay := graph.OverlayFromEvents(events)
	if want := []string{"idle", "pre_delay", "slide_out_0"}; strings.Join(overlay.Visited, ",") != strings.Join(want, ",") {
		t.Fatalf("Visited = %v, want %v", overlay.Visited, want)
	}

	got := graph.GenerateMermaid(trial(domain.DirectionLeft, "a.png"), overlay)
	for _, want := range []string{
		"class idle visited;",
		"class slide_out_0 visited;",
		"class slide_out_0 current;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
}
