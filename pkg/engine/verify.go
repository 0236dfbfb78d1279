package engine

import (
	"fmt"
	"slices"

	"github.com/classmesh/timegrid/pkg/model"
)

// ScanViolations re-checks an assignment from scratch against an empty board.
// Placements replay in ascending lecture id order, so a pairwise conflict is
// attributed to the later of the two lectures. Entries for unknown lecture ids
// or placements outside the instance are skipped; shape problems like those
// are Verify's concern. The scan is read-only on the input and assignment.
func ScanViolations(input model.Input, lectures []model.LectureInstance, assignment model.Assignment) []model.Violation {
	eval := newEvaluator(input, model.DefaultSoftWeights())
	board := newBoard(input, lectures)

	violations := make([]model.Violation, 0)
	for _, id := range sortedIds(assignment) {
		if id >= uint64(len(lectures)) {
			continue
		}
		lecture := lectures[id]
		placement := assignment[id]
		if !placementInGrid(input, lecture, placement) {
			continue
		}

		kinds, _ := eval.Evaluate(board, lecture, placement)
		for _, kind := range kinds {
			violations = append(violations, model.Violation{
				Kind:    kind,
				Lecture: id,
				Detail:  violationDetail(input, lecture, placement, kind),
			})
		}
		board.place(lecture, placement)
	}

	model.SortViolations(violations)
	return violations
}

// verifyAssignment reports whether the assignment seats every derived lecture
// exactly once, with an eligible faculty, without breaking a hard constraint.
func verifyAssignment(input model.Input, lectures []model.LectureInstance, assignment model.Assignment) bool {
	if len(assignment) != len(lectures) {
		return false
	}

	for _, lecture := range lectures {
		placement, placed := assignment[lecture.Id]
		if !placed || !placementInGrid(input, lecture, placement) {
			return false
		}
		// Eligibility is enforced by construction during search; a foreign
		// assignment must still pass it here.
		if !slices.Contains(input.Subjects[lecture.Subject].EligibleFaculty, placement.Faculty) {
			return false
		}
	}

	return len(ScanViolations(input, lectures, assignment)) == 0
}

// placementInGrid rejects placements that do not even address the instance:
// unknown faculty or room indexes, start slots outside the grid, or spans
// crossing a day boundary.
func placementInGrid(input model.Input, lecture model.LectureInstance, placement model.Placement) bool {
	if placement.Faculty >= uint64(len(input.Faculties)) || placement.Room >= uint64(len(input.Rooms)) {
		return false
	}
	if placement.Slot >= input.Grid.Slots() {
		return false
	}
	_, period := input.Grid.Slot(placement.Slot)
	return input.Grid.FitsDay(period, lecture.Duration)
}

func violationDetail(input model.Input, lecture model.LectureInstance, placement model.Placement, kind model.ViolationKind) string {
	subject := input.Subjects[lecture.Subject].Name
	division := input.Divisions[lecture.Division].Name
	faculty := input.Faculties[placement.Faculty].Name
	room := input.Rooms[placement.Room].Name
	day, period := input.Grid.Slot(placement.Slot)

	switch kind {
	case model.FacultyDoubleBooked:
		return fmt.Sprintf("faculty %q is already teaching on day %v period %v", faculty, day, period)
	case model.RoomDoubleBooked:
		return fmt.Sprintf("room %q is already taken on day %v period %v", room, day, period)
	case model.DivisionDoubleBooked:
		return fmt.Sprintf("division %q already has a lecture on day %v period %v", division, day, period)
	case model.FacultyUnavailable:
		return fmt.Sprintf("faculty %q is not available on day %v period %v", faculty, day, period)
	case model.RoomUnavailable:
		return fmt.Sprintf("room %q is not available on day %v period %v", room, day, period)
	case model.RoomCapabilityMismatch:
		return fmt.Sprintf("room %q lacks tags required by subject %q", room, subject)
	case model.RoomCapacityExceeded:
		return fmt.Sprintf("room %q seats %v but %q of %q brings %v students", room, input.Rooms[placement.Room].Capacity, subject, division, lecture.Students)
	case model.FacultyOverload:
		return fmt.Sprintf("faculty %q exceeds a load cap with %q", faculty, subject)
	default:
		return string(kind)
	}
}
