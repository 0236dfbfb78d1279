package model

import "time"

// Placement seats a lecture: Slot is the starting slot id, the lecture then
// occupies Duration consecutive periods of the same day in Room under Faculty.
type Placement struct {
	Slot    uint64
	Faculty uint64
	Room    uint64
}

// Assignment maps lecture ids to placements. It is partial while a search is
// running and total once every lecture is seated.
type Assignment map[uint64]Placement

// Clone returns an independent copy of the assignment.
func (assignment Assignment) Clone() Assignment {
	clone := make(Assignment, len(assignment))
	for lecture, placement := range assignment {
		clone[lecture] = placement
	}
	return clone
}

// Schedule is an immutable committed snapshot of an assignment.
type Schedule struct {
	Id         string
	Name       string
	CreatedAt  time.Time
	Assignment Assignment
	Score      SoftScore
	Violations []Violation
	Unplaced   []UnplacedLecture
}

// PlacementChange describes how one lecture moved between two schedules. A nil
// side means the lecture was not placed in that schedule.
type PlacementChange struct {
	Lecture uint64
	Old     *Placement
	New     *Placement
}
