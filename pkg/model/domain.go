package model

// Faculty is a teaching staff member. Availability is indexed [period][day]
// and must match the grid dimensions. Load caps are measured in periods;
// MaxDailyLoad of zero means no daily cap.
type Faculty struct {
	Id              uint64
	Name            string   `validate:"required"`
	Specializations []string
	Availability    [][]bool `validate:"required"`
	MaxWeeklyLoad   uint64   `validate:"min=1"`
	MaxDailyLoad    uint64
	PreferredSlots  []SlotRef
}

// Subject is a course offering. Duration is the number of consecutive periods
// one lecture occupies (laboratory subjects span two). Prerequisite is carried
// for rendering only and never constrains placement.
type Subject struct {
	Id              uint64
	Name            string   `validate:"required"`
	WeeklyLectures  uint64   `validate:"min=1"`
	Duration        uint64   `validate:"min=1"`
	RequiredTags    []string
	EligibleFaculty []uint64 `validate:"min=1"`
	Prerequisite    *uint64
}

// Room availability is indexed [period][day] like faculty availability. Tags
// name the capabilities the room offers (lab equipment, projector, ...).
type Room struct {
	Id           uint64
	Name         string   `validate:"required"`
	Capacity     uint64   `validate:"min=1"`
	Tags         []string
	Availability [][]bool `validate:"required"`
}

// SubGroup is an elective split of a division. Lectures of different
// sub-groups of one division may run in parallel.
type SubGroup struct {
	Id       uint64
	Name     string `validate:"required"`
	Students uint64 `validate:"min=1"`
}

// DivisionSubject is one curriculum entry. WeeklyLectures of zero falls back
// to the subject's default; a nil SubGroup schedules the whole division.
type DivisionSubject struct {
	Subject        uint64
	WeeklyLectures uint64
	SubGroup       *uint64
}

// Division is a student cohort taught together.
type Division struct {
	Id        uint64
	Name      string            `validate:"required"`
	Students  uint64            `validate:"min=1"`
	Subjects  []DivisionSubject `validate:"min=1,dive"`
	SubGroups []SubGroup        `validate:"dive"`
}
