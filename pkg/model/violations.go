package model

import (
	"cmp"
	"slices"
)

// ViolationKind identifies a hard constraint broken by a placement.
type ViolationKind string

const (
	FacultyDoubleBooked    ViolationKind = "FacultyDoubleBooked"
	RoomDoubleBooked       ViolationKind = "RoomDoubleBooked"
	DivisionDoubleBooked   ViolationKind = "DivisionDoubleBooked"
	FacultyUnavailable     ViolationKind = "FacultyUnavailable"
	RoomUnavailable        ViolationKind = "RoomUnavailable"
	RoomCapabilityMismatch ViolationKind = "RoomCapabilityMismatch"
	RoomCapacityExceeded   ViolationKind = "RoomCapacityExceeded"
	FacultyOverload        ViolationKind = "FacultyOverload"
)

// violationRanks fixes the canonical report order of violation kinds.
var violationRanks = map[ViolationKind]int{
	FacultyDoubleBooked:    0,
	RoomDoubleBooked:       1,
	DivisionDoubleBooked:   2,
	FacultyUnavailable:     3,
	RoomUnavailable:        4,
	RoomCapabilityMismatch: 5,
	RoomCapacityExceeded:   6,
	FacultyOverload:        7,
}

// Rank returns the canonical position of the kind within reports.
func (kind ViolationKind) Rank() int {
	rank, ok := violationRanks[kind]
	if !ok {
		panic("unknown violation kind: " + string(kind))
	}
	return rank
}

// Violation ties a broken constraint to the lecture that broke it.
type Violation struct {
	Kind    ViolationKind
	Lecture uint64
	Detail  string
}

// SortViolations orders violations canonically: kind rank first, then lecture id.
func SortViolations(violations []Violation) {
	slices.SortStableFunc(violations, func(a, b Violation) int {
		if a.Kind != b.Kind {
			return cmp.Compare(a.Kind.Rank(), b.Kind.Rank())
		}
		return cmp.Compare(a.Lecture, b.Lecture)
	})
}

// SortKinds orders violation kinds canonically and drops duplicates.
func SortKinds(kinds []ViolationKind) []ViolationKind {
	seen := make(map[ViolationKind]bool, len(kinds))
	unique := make([]ViolationKind, 0, len(kinds))
	for _, kind := range kinds {
		if !seen[kind] {
			seen[kind] = true
			unique = append(unique, kind)
		}
	}
	slices.SortFunc(unique, func(a, b ViolationKind) int {
		return cmp.Compare(a.Rank(), b.Rank())
	})
	return unique
}

// UnplacedLecture reports a lecture the search could not seat together with
// the first hard-constraint kind that blocked its last candidate scan.
type UnplacedLecture struct {
	Lecture  uint64
	Blocking ViolationKind
}
