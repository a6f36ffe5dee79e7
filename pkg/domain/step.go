package domain

import "time"

// Motion tells whether a step moves the image away from the center or back to it.
type Motion string

const (
	MotionOutward Motion = "outward"
	MotionInward  Motion = "inward"
)

// AnimationStep moves the image horizontally to X over Duration.
type AnimationStep struct {
	Motion   Motion        `json:"motion"`
	X        float64       `json:"x"`
	Duration time.Duration `json:"duration"`
}

// MotionTable is the pair of steps making up one cycle: outward, then inward.
type MotionTable [2]AnimationStep

// MotionTables computes both direction tables for a trial.
// Index 0 moves right first (to canvasW - imageW), index 1 moves left first (to 0).
// Both return to the center and each step lasts half a cycle.
func MotionTables(c TrialConfig) [2]MotionTable {
	half := c.Cycle() / 2
	center := c.CenterX()
	return [2]MotionTable{
		{
			{Motion: MotionOutward, X: float64(c.CanvasSize.Width - c.ImageSize.Width), Duration: half},
			{Motion: MotionInward, X: center, Duration: half},
		},
		{
			{Motion: MotionOutward, X: 0, Duration: half},
			{Motion: MotionInward, X: center, Duration: half},
		},
	}
}
