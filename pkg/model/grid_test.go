package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotIdAndSlotRoundtrip(t *testing.T) {
	for iteration := 0; iteration < 10; iteration++ {
		//** Arrange
		grid := Grid{
			Days:    uint64(rand.Intn(7) + 1),
			Periods: uint64(rand.Intn(12) + 1),
		}

		//** Act
		ids := make([]uint64, 0, grid.Slots())
		for day := uint64(0); day < grid.Days; day++ {
			for period := uint64(0); period < grid.Periods; period++ {
				ids = append(ids, grid.SlotId(day, period))
			}
		}

		//** Assert
		for i, id := range ids {
			assert.Equal(t, uint64(i), id)
			day, period := grid.Slot(id)
			assert.Equal(t, id, grid.SlotId(day, period))
		}
	}
}

func TestGridContains(t *testing.T) {
	//** Arrange
	grid := Grid{Days: 5, Periods: 6}

	//** Assert
	assert.True(t, grid.Contains(SlotRef{Day: 0, Period: 0}))
	assert.True(t, grid.Contains(SlotRef{Day: 4, Period: 5}))
	assert.False(t, grid.Contains(SlotRef{Day: 5, Period: 0}))
	assert.False(t, grid.Contains(SlotRef{Day: 0, Period: 6}))
}

func TestGridFitsDay(t *testing.T) {
	//** Arrange
	grid := Grid{Days: 5, Periods: 4}

	scenarios := []struct {
		period   uint64
		duration uint64
		fits     bool
	}{
		{period: 0, duration: 1, fits: true},
		{period: 0, duration: 4, fits: true},
		{period: 3, duration: 1, fits: true},
		{period: 3, duration: 2, fits: false},
		{period: 1, duration: 4, fits: false},
	}

	for _, scenario := range scenarios {
		//** Assert
		assert.Equal(t, scenario.fits, grid.FitsDay(scenario.period, scenario.duration))
	}
}
