package model

// Grid is the weekly day-by-period lattice every lecture is placed on.
type Grid struct {
	Days    uint64 `validate:"min=1"`
	Periods uint64 `validate:"min=1"`
}

// SlotRef addresses one cell of the grid by coordinates.
type SlotRef struct {
	Day    uint64
	Period uint64
}

// Slots returns the total number of start slots in the grid.
func (grid Grid) Slots() uint64 {
	return grid.Days * grid.Periods
}

// SlotId gives a unique index to a (day, period) pair and Slot gives the pair
// back from a unique index. Ascending ids enumerate periods within a day before
// moving to the next day.
func (grid Grid) SlotId(day, period uint64) uint64 {
	return day*grid.Periods + period
}

func (grid Grid) Slot(id uint64) (day, period uint64) {
	day = id / grid.Periods
	period = id % grid.Periods
	return day, period
}

// Contains reports whether the reference addresses a cell inside the grid.
func (grid Grid) Contains(ref SlotRef) bool {
	return ref.Day < grid.Days && ref.Period < grid.Periods
}

// FitsDay reports whether a lecture of the given duration starting at the
// period still ends within the same day.
func (grid Grid) FitsDay(period, duration uint64) bool {
	return period+duration <= grid.Periods
}
