package engine

import (
	"slices"

	"github.com/samber/lo"

	"github.com/classmesh/timegrid/pkg/model"
)

type standardEvaluator struct {
	input   model.Input
	weights model.SoftWeights
	relax   model.ViolationKind // kind ignored during relaxation probes, empty = none
}

func newEvaluator(input model.Input, weights model.SoftWeights) evaluator {
	return &standardEvaluator{
		input:   input,
		weights: weights,
	}
}

func newRelaxedEvaluator(input model.Input, weights model.SoftWeights, relax model.ViolationKind) evaluator {
	return &standardEvaluator{
		input:   input,
		weights: weights,
		relax:   relax,
	}
}

func (evaluator *standardEvaluator) Evaluate(b *board, lecture model.LectureInstance, placement model.Placement) ([]model.ViolationKind, float64) {
	kinds := make([]model.ViolationKind, 0)
	report := func(kind model.ViolationKind) {
		if kind != evaluator.relax {
			kinds = append(kinds, kind)
		}
	}

	day, _ := b.grid.Slot(placement.Slot)
	span := spanSlots(placement.Slot, lecture.Duration)

	//** Double bookings
	if lo.SomeBy(span, func(slot uint64) bool { return b.facultyBusy[placement.Faculty][slot] }) {
		report(model.FacultyDoubleBooked)
	}
	if lo.SomeBy(span, func(slot uint64) bool { return b.roomBusy[placement.Room][slot] }) {
		report(model.RoomDoubleBooked)
	}
	if lo.SomeBy(span, func(slot uint64) bool { return len(b.divisionConflicts(lecture, slot)) > 0 }) {
		report(model.DivisionDoubleBooked)
	}

	//** Availability
	if lo.SomeBy(span, func(slot uint64) bool { return !b.facultyFree[placement.Faculty][slot] }) {
		report(model.FacultyUnavailable)
	}
	if lo.SomeBy(span, func(slot uint64) bool { return !b.roomFree[placement.Room][slot] }) {
		report(model.RoomUnavailable)
	}

	//** Room fitness
	room := evaluator.input.Rooms[placement.Room]
	subject := evaluator.input.Subjects[lecture.Subject]
	if !lo.Every(room.Tags, subject.RequiredTags) {
		report(model.RoomCapabilityMismatch)
	}
	if lecture.Students > room.Capacity {
		report(model.RoomCapacityExceeded)
	}

	//** Faculty load
	faculty := evaluator.input.Faculties[placement.Faculty]
	if b.facultyLoad[placement.Faculty]+lecture.Duration > faculty.MaxWeeklyLoad ||
		(faculty.MaxDailyLoad > 0 && b.facultyDay[placement.Faculty][day]+lecture.Duration > faculty.MaxDailyLoad) {
		report(model.FacultyOverload)
	}

	if len(kinds) > 0 {
		return kinds, 0
	}
	return kinds, evaluator.softDelta(b, lecture, placement)
}

// softDelta computes the penalty growth a legal seating would cause, scoped to
// the faculty, division day and subject it touches, and returns its negation.
func (evaluator *standardEvaluator) softDelta(b *board, lecture model.LectureInstance, placement model.Placement) float64 {
	day, period := b.grid.Slot(placement.Slot)

	//** Preferred start slots
	preferred := 0.0
	if prefs := b.preferred[placement.Faculty]; prefs != nil && !prefs[placement.Slot] {
		preferred = 1
	}

	//** Load balance over the touched faculty
	loads := slices.Clone(b.facultyDay[placement.Faculty])
	balance := -varianceOf(loads)
	loads[day] += lecture.Duration
	balance += varianceOf(loads)

	//** Day shape of the touched division day
	occupied, rooms := b.dayProfile(lecture.Division, day)
	compactness := -float64(holesOf(occupied))
	locality := -float64(switchesOf(rooms))
	for i := uint64(0); i < lecture.Duration; i++ {
		occupied[period+i] = true
		rooms[period+i] = append(rooms[period+i], placement.Room)
	}
	compactness += float64(holesOf(occupied))
	locality += float64(switchesOf(rooms))

	//** Slot consistency of the (division, subject) pair
	consistency := 0.0
	if counts := b.startCounts[[2]uint64{lecture.Division, lecture.Subject}]; len(counts) > 0 && counts[period] == 0 {
		consistency = 1
	}

	growth := evaluator.weights.PreferredSlots*preferred +
		evaluator.weights.RoomLocality*locality +
		evaluator.weights.LoadBalance*balance +
		evaluator.weights.DayCompactness*compactness +
		evaluator.weights.SlotConsistency*consistency
	return -growth
}

func (evaluator *standardEvaluator) Score(b *board, assignment model.Assignment) model.SoftScore {
	var preferred, locality, balance, compactness, consistency float64

	//** Preferred start slots
	for _, id := range sortedIds(assignment) {
		placement := assignment[id]
		if prefs := b.preferred[placement.Faculty]; prefs != nil && !prefs[placement.Slot] {
			preferred++
		}
	}

	//** Load balance
	for faculty := range b.facultyDay {
		balance += varianceOf(b.facultyDay[faculty])
	}

	//** Day shape per division
	for division := range b.divisionOcc {
		for day := uint64(0); day < b.grid.Days; day++ {
			occupied, rooms := b.dayProfile(uint64(division), day)
			compactness += float64(holesOf(occupied))
			locality += float64(switchesOf(rooms))
		}
	}

	//** Slot consistency
	for _, counts := range b.startCounts {
		if len(counts) > 0 {
			consistency += float64(len(counts) - 1)
		}
	}

	score := model.SoftScore{
		PreferredSlots:  evaluator.weights.PreferredSlots * preferred,
		RoomLocality:    evaluator.weights.RoomLocality * locality,
		LoadBalance:     evaluator.weights.LoadBalance * balance,
		DayCompactness:  evaluator.weights.DayCompactness * compactness,
		SlotConsistency: evaluator.weights.SlotConsistency * consistency,
	}
	score.Total = score.PreferredSlots + score.RoomLocality + score.LoadBalance + score.DayCompactness + score.SlotConsistency
	return score
}

// dayProfile copies one division day off the board: which periods are occupied
// and which rooms hold each period. The copies are free to mutate.
func (b *board) dayProfile(division, day uint64) (occupied []bool, rooms [][]uint64) {
	occupied = make([]bool, b.grid.Periods)
	rooms = make([][]uint64, b.grid.Periods)
	for period := uint64(0); period < b.grid.Periods; period++ {
		occupants := b.divisionOcc[division][b.grid.SlotId(day, period)]
		occupied[period] = len(occupants) > 0
		rooms[period] = lo.Map(occupants, func(o occupant, _ int) uint64 { return o.room })
	}
	return occupied, rooms
}

// holesOf counts idle periods strictly between the first and last occupied one.
func holesOf(occupied []bool) int {
	first, last := -1, -1
	for period, busy := range occupied {
		if !busy {
			continue
		}
		if first == -1 {
			first = period
		}
		last = period
	}
	holes := 0
	for period := first + 1; period < last; period++ {
		if !occupied[period] {
			holes++
		}
	}
	return holes
}

// switchesOf counts adjacent occupied periods held in different room sets.
func switchesOf(rooms [][]uint64) int {
	switches := 0
	for period := 0; period+1 < len(rooms); period++ {
		if len(rooms[period]) == 0 || len(rooms[period+1]) == 0 {
			continue
		}
		if !sameRoomSet(rooms[period], rooms[period+1]) {
			switches++
		}
	}
	return switches
}

func sameRoomSet(a, b []uint64) bool {
	left, right := lo.Uniq(a), lo.Uniq(b)
	slices.Sort(left)
	slices.Sort(right)
	return slices.Equal(left, right)
}

// varianceOf is the population variance of the loads.
func varianceOf(loads []uint64) float64 {
	if len(loads) == 0 {
		return 0
	}
	mean := float64(lo.Sum(loads)) / float64(len(loads))
	variance := 0.0
	for _, load := range loads {
		deviation := float64(load) - mean
		variance += deviation * deviation
	}
	return variance / float64(len(loads))
}

func spanSlots(slot, duration uint64) []uint64 {
	span := make([]uint64, duration)
	for i := range span {
		span[i] = slot + uint64(i)
	}
	return span
}

func sortedIds(assignment model.Assignment) []uint64 {
	ids := lo.Keys(assignment)
	slices.Sort(ids)
	return ids
}
