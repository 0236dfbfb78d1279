package engine

import (
	"slices"

	"github.com/samber/lo"

	"github.com/classmesh/timegrid/pkg/model"
)

// occupant records one lecture holding a division's slot, together with the
// room it sits in so locality scoring never needs the assignment map.
type occupant struct {
	lecture uint64
	room    uint64
}

// board is the mutable occupancy state of exactly one search run. Availability
// bitmaps are deep-copied and flattened to slot ids on construction, so runs
// never share mutable state with the input or with each other.
type board struct {
	grid     model.Grid
	lectures []model.LectureInstance

	facultyFree [][]bool // [faculty][slot], copied from input availability
	roomFree    [][]bool
	facultyBusy [][]bool // [faculty][slot], occupancy marks
	roomBusy    [][]bool
	divisionOcc [][][]occupant // [division][slot]

	facultyLoad []uint64   // occupied periods per faculty
	facultyDay  [][]uint64 // [faculty][day] occupied periods

	// (division, subject) -> start period -> placements, for slot consistency
	startCounts map[[2]uint64]map[uint64]uint64

	// preferred start slots per faculty; nil when the faculty states none
	preferred []map[uint64]bool
}

func newBoard(input model.Input, lectures []model.LectureInstance) *board {
	grid := input.Grid
	slots := grid.Slots()

	b := &board{
		grid:        grid,
		lectures:    lectures,
		facultyFree: lo.Map(input.Faculties, func(faculty model.Faculty, _ int) []bool { return flattenAvailability(grid, faculty.Availability) }),
		roomFree:    lo.Map(input.Rooms, func(room model.Room, _ int) []bool { return flattenAvailability(grid, room.Availability) }),
		facultyBusy: emptyMarks(len(input.Faculties), slots),
		roomBusy:    emptyMarks(len(input.Rooms), slots),
		divisionOcc: make([][][]occupant, len(input.Divisions)),
		facultyLoad: make([]uint64, len(input.Faculties)),
		facultyDay:  make([][]uint64, len(input.Faculties)),
		startCounts: make(map[[2]uint64]map[uint64]uint64),
		preferred:   make([]map[uint64]bool, len(input.Faculties)),
	}

	for division := range b.divisionOcc {
		b.divisionOcc[division] = make([][]occupant, slots)
	}
	for faculty := range input.Faculties {
		b.facultyDay[faculty] = make([]uint64, grid.Days)
		if len(input.Faculties[faculty].PreferredSlots) == 0 {
			continue
		}
		b.preferred[faculty] = make(map[uint64]bool, len(input.Faculties[faculty].PreferredSlots))
		for _, ref := range input.Faculties[faculty].PreferredSlots {
			b.preferred[faculty][grid.SlotId(ref.Day, ref.Period)] = true
		}
	}

	return b
}

// flattenAvailability turns a [period][day] bitmap into a slot-id indexed row.
func flattenAvailability(grid model.Grid, availability [][]bool) []bool {
	free := make([]bool, grid.Slots())
	for day := uint64(0); day < grid.Days; day++ {
		for period := uint64(0); period < grid.Periods; period++ {
			free[grid.SlotId(day, period)] = availability[period][day]
		}
	}
	return free
}

func emptyMarks(rows int, slots uint64) [][]bool {
	marks := make([][]bool, rows)
	for i := range marks {
		marks[i] = make([]bool, slots)
	}
	return marks
}

// place marks every slot the lecture spans. The placement must already have
// been judged legal; place never re-checks.
func (b *board) place(lecture model.LectureInstance, placement model.Placement) {
	day, period := b.grid.Slot(placement.Slot)

	for i := uint64(0); i < lecture.Duration; i++ {
		slot := placement.Slot + i
		b.facultyBusy[placement.Faculty][slot] = true
		b.roomBusy[placement.Room][slot] = true
		b.divisionOcc[lecture.Division][slot] = append(b.divisionOcc[lecture.Division][slot], occupant{lecture: lecture.Id, room: placement.Room})
	}

	b.facultyLoad[placement.Faculty] += lecture.Duration
	b.facultyDay[placement.Faculty][day] += lecture.Duration

	key := [2]uint64{lecture.Division, lecture.Subject}
	if b.startCounts[key] == nil {
		b.startCounts[key] = make(map[uint64]uint64)
	}
	b.startCounts[key][period]++
}

// remove undoes a previous place of the same lecture and placement.
func (b *board) remove(lecture model.LectureInstance, placement model.Placement) {
	day, period := b.grid.Slot(placement.Slot)

	for i := uint64(0); i < lecture.Duration; i++ {
		slot := placement.Slot + i
		b.facultyBusy[placement.Faculty][slot] = false
		b.roomBusy[placement.Room][slot] = false
		b.divisionOcc[lecture.Division][slot] = slices.DeleteFunc(b.divisionOcc[lecture.Division][slot], func(o occupant) bool {
			return o.lecture == lecture.Id
		})
	}

	b.facultyLoad[placement.Faculty] -= lecture.Duration
	b.facultyDay[placement.Faculty][day] -= lecture.Duration

	key := [2]uint64{lecture.Division, lecture.Subject}
	b.startCounts[key][period]--
	if b.startCounts[key][period] == 0 {
		delete(b.startCounts[key], period)
	}
}

// loadAssignment replays an existing assignment onto an empty board.
func (b *board) loadAssignment(assignment model.Assignment) {
	ids := lo.Keys(assignment)
	slices.Sort(ids)
	for _, id := range ids {
		b.place(b.lectures[id], assignment[id])
	}
}

// cohortsCollide reports whether two lectures of one division exclude each
// other: everything collides except two distinct sub-groups running electives
// in parallel.
func cohortsCollide(a, b model.LectureInstance) bool {
	if a.SubGroup == nil || b.SubGroup == nil {
		return true
	}
	return *a.SubGroup == *b.SubGroup
}

// divisionConflicts returns the occupants at a slot that exclude the lecture.
func (b *board) divisionConflicts(lecture model.LectureInstance, slot uint64) []occupant {
	return lo.Filter(b.divisionOcc[lecture.Division][slot], func(o occupant, _ int) bool {
		return cohortsCollide(lecture, b.lectures[o.lecture])
	})
}
