package core

import (
	"testing"
	"time"

	"github.com/huangsam/leadtime/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStepGrid(t *testing.T) {
	c1 := cycleAt(1, 0)
	c2 := cycleAt(1, 12)
	observations := []schema.Observation{
		obs(c2, 6, 4*time.Hour),
		obs(c1, 6, 4*time.Hour+10*time.Minute),
		obs(c1, 0, 3*time.Hour+40*time.Minute),
		obs(c1, 0, 3*time.Hour+50*time.Minute), // redelivery, later than the first
	}

	grid := BuildStepGrid(observations)

	assert.Equal(t, []time.Time{c1, c2}, grid.Cycles)
	assert.Equal(t, []int{0, 6}, grid.ForecastHours)
	assert.Equal(t, "03:40:00", grid.Cells[c1][0])
	assert.Equal(t, "04:10:00", grid.Cells[c1][6])
	assert.Equal(t, "16:00:00", grid.Cells[c2][6])
	_, ok := grid.Cells[c2][0]
	assert.False(t, ok)

	assert.Equal(t, 3*time.Hour+40*time.Minute, grid.Clocks[c1][0])
	assert.Equal(t, 4*time.Hour, grid.Clocks[c2][6])
}

func TestBuildStepGrid_NormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	cycle := time.Date(2025, 3, 1, 2, 0, 0, 0, zone) // 00 UTC
	grid := BuildStepGrid([]schema.Observation{obs(cycle, 3, 5*time.Hour)})

	require.Len(t, grid.Cycles, 1)
	assert.Equal(t, time.UTC, grid.Cycles[0].Location())
	assert.Equal(t, "05:00:00", grid.Cells[grid.Cycles[0]][3])
}

func TestBuildStepGrid_Empty(t *testing.T) {
	grid := BuildStepGrid(nil)
	assert.Empty(t, grid.Cycles)
	assert.Empty(t, grid.ForecastHours)
}
