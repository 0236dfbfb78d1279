package model

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
)

// PlacedLecture pairs a lecture with its placement, decoded into grid
// coordinates so view consumers never re-derive slot arithmetic.
type PlacedLecture struct {
	Lecture   LectureInstance
	Placement Placement
	Day       uint64
	Period    uint64
}

// FacultyView groups an assignment by the teaching faculty.
func FacultyView(grid Grid, lectures []LectureInstance, assignment Assignment) map[uint64][]PlacedLecture {
	return groupPlacements(grid, lectures, assignment, func(placed PlacedLecture) uint64 {
		return placed.Placement.Faculty
	})
}

// DivisionView groups an assignment by the attending division.
func DivisionView(grid Grid, lectures []LectureInstance, assignment Assignment) map[uint64][]PlacedLecture {
	return groupPlacements(grid, lectures, assignment, func(placed PlacedLecture) uint64 {
		return placed.Lecture.Division
	})
}

// RoomView groups an assignment by the hosting room.
func RoomView(grid Grid, lectures []LectureInstance, assignment Assignment) map[uint64][]PlacedLecture {
	return groupPlacements(grid, lectures, assignment, func(placed PlacedLecture) uint64 {
		return placed.Placement.Room
	})
}

// groupPlacements projects an assignment onto one grouping key. Every group is
// sorted by (day, period, lecture id) so rendering is stable.
func groupPlacements(grid Grid, lectures []LectureInstance, assignment Assignment, key func(PlacedLecture) uint64) map[uint64][]PlacedLecture {
	placed := make([]PlacedLecture, 0, len(assignment))
	for lecture, placement := range assignment {
		day, period := grid.Slot(placement.Slot)
		placed = append(placed, PlacedLecture{
			Lecture:   lectures[lecture],
			Placement: placement,
			Day:       day,
			Period:    period,
		})
	}

	groups := lo.GroupBy(placed, key)
	for _, group := range groups {
		slices.SortFunc(group, func(a, b PlacedLecture) int {
			if a.Day != b.Day {
				return cmp.Compare(a.Day, b.Day)
			}
			if a.Period != b.Period {
				return cmp.Compare(a.Period, b.Period)
			}
			return cmp.Compare(a.Lecture.Id, b.Lecture.Id)
		})
	}
	return groups
}
