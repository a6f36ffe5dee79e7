package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestMotionTables_Default(t *testing.T) {
	cfg := domain.DefaultTrialConfig()
	tables := domain.MotionTables(cfg)

	// Right first: to the right edge, then back to center.
	assert.Equal(t, domain.MotionTable{
		{Motion: domain.MotionOutward, X: 300, Duration: 500 * time.Millisecond},
		{Motion: domain.MotionInward, X: 150, Duration: 500 * time.Millisecond},
	}, tables[0])

	// Left first: to the left edge, then back to center.
	assert.Equal(t, domain.MotionTable{
		{Motion: domain.MotionOutward, X: 0, Duration: 500 * time.Millisecond},
		{Motion: domain.MotionInward, X: 150, Duration: 500 * time.Millisecond},
	}, tables[1])
}

func TestMotionTables_StepsSumToCycle(t *testing.T) {
	cfg := domain.DefaultTrialConfig()
	cfg.TimingCycle = 1001
	cfg.CanvasSize = domain.Size{Width: 640, Height: 480}
	cfg.ImageSize = domain.Size{Width: 101, Height: 80}

	for i, table := range domain.MotionTables(cfg) {
		assert.Equal(t, cfg.Cycle(), table[0].Duration+table[1].Duration, "table %d", i)
		assert.Equal(t, 269.5, table[1].X, "table %d returns to center", i)
	}
}

func TestDirection_TableIndex(t *testing.T) {
	assert.Equal(t, 0, domain.DirectionRight.TableIndex())
	assert.Equal(t, 1, domain.DirectionLeft.TableIndex())
	// Anything that is not "right" moves left first.
	assert.Equal(t, 1, domain.Direction("up").TableIndex())
}
