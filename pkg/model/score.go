package model

// SoftWeights scales the penalty of each soft-constraint kind.
type SoftWeights struct {
	PreferredSlots  float64
	RoomLocality    float64
	LoadBalance     float64
	DayCompactness  float64
	SlotConsistency float64
}

// DefaultSoftWeights returns the weights used when no configuration overrides them.
func DefaultSoftWeights() SoftWeights {
	return SoftWeights{
		PreferredSlots:  2.5,
		RoomLocality:    1.0,
		LoadBalance:     1.5,
		DayCompactness:  2.0,
		SlotConsistency: 1.0,
	}
}

// SoftScore is the weighted penalty breakdown of an assignment. Lower is
// better; a perfect timetable scores zero everywhere.
type SoftScore struct {
	Total           float64
	PreferredSlots  float64
	RoomLocality    float64
	LoadBalance     float64
	DayCompactness  float64
	SlotConsistency float64
}
