package model

import (
	"cmp"
	"slices"
)

// LectureInstance is one schedulable meeting demanded by a division's
// curriculum. Instances are derived, never part of the input.
type LectureInstance struct {
	Id       uint64
	Subject  uint64
	Division uint64
	SubGroup *uint64
	Ordinal  uint64
	Duration uint64
	Students uint64
}

// DeriveLectures expands every curriculum entry into its weekly lecture
// instances. The expansion is deterministic: divisions ascending, entries by
// (subject, sub-group) ascending with whole-division entries first, ordinals
// within an entry ascending; ids are assigned sequentially from zero.
func DeriveLectures(input Input) []LectureInstance {
	lectures := make([]LectureInstance, 0)

	for _, division := range input.Divisions {
		entries := slices.Clone(division.Subjects)
		slices.SortFunc(entries, func(a, b DivisionSubject) int {
			if a.Subject != b.Subject {
				return cmp.Compare(a.Subject, b.Subject)
			}
			return cmp.Compare(subGroupKey(a.SubGroup), subGroupKey(b.SubGroup))
		})

		for _, entry := range entries {
			subject := input.Subjects[entry.Subject]

			weekly := entry.WeeklyLectures
			if weekly == 0 {
				weekly = subject.WeeklyLectures
			}

			students := division.Students
			if entry.SubGroup != nil {
				students = division.SubGroups[*entry.SubGroup].Students
			}

			for ordinal := uint64(0); ordinal < weekly; ordinal++ {
				lectures = append(lectures, LectureInstance{
					Id:       uint64(len(lectures)),
					Subject:  subject.Id,
					Division: division.Id,
					SubGroup: entry.SubGroup,
					Ordinal:  ordinal,
					Duration: subject.Duration,
					Students: students,
				})
			}
		}
	}

	return lectures
}

// subGroupKey orders sub-group pointers with nil (whole division) first.
func subGroupKey(subGroup *uint64) uint64 {
	if subGroup == nil {
		return 0
	}
	return *subGroup + 1
}
