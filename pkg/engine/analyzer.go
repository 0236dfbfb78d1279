package engine

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/model"
)

//** Types

// Relaxation names one hard constraint an administrator could loosen to make
// room for an unplaced lecture. Double bookings are never relaxed.
type Relaxation string

const (
	RelaxFacultyLoad         Relaxation = "RelaxFacultyLoad"
	RelaxFacultyAvailability Relaxation = "RelaxFacultyAvailability"
	RelaxRoomAvailability    Relaxation = "RelaxRoomAvailability"
	RelaxRoomCapacity        Relaxation = "RelaxRoomCapacity"
	RelaxDivisionExclusivity Relaxation = "RelaxDivisionExclusivity"
	RelaxRoomCapability      Relaxation = "RelaxRoomCapability"
)

// relaxationOrder ranks relaxations cheapest first: raising a load cap asks
// less of an institution than re-equipping a room.
var relaxationOrder = []Relaxation{
	RelaxFacultyLoad,
	RelaxFacultyAvailability,
	RelaxRoomAvailability,
	RelaxRoomCapacity,
	RelaxDivisionExclusivity,
	RelaxRoomCapability,
}

// relaxedKinds maps each relaxation to the violation kind it silences.
var relaxedKinds = map[Relaxation]model.ViolationKind{
	RelaxFacultyLoad:         model.FacultyOverload,
	RelaxFacultyAvailability: model.FacultyUnavailable,
	RelaxRoomAvailability:    model.RoomUnavailable,
	RelaxRoomCapacity:        model.RoomCapacityExceeded,
	RelaxDivisionExclusivity: model.DivisionDoubleBooked,
	RelaxRoomCapability:      model.RoomCapabilityMismatch,
}

func (relaxation Relaxation) rank() int {
	return slices.Index(relaxationOrder, relaxation)
}

// Suggestion is one single-relaxation repair for one unplaced lecture.
// Candidates counts the seats the relaxation unlocks; Magnitude quantifies the
// change asked for (overload excess in periods, capacity shortfall in seats).
type Suggestion struct {
	Lecture    uint64
	Relaxation Relaxation
	Candidates int
	Magnitude  float64
	Detail     string
}

// Report is the analyzer's answer for one Result: suggestions sorted by
// (relaxation cheapness, magnitude, lecture id) and the stubborn lectures no
// single relaxation can seat.
type Report struct {
	Suggestions []Suggestion
	Stubborn    []uint64
}

// FacultyWorkload summarizes one faculty's committed teaching.
type FacultyWorkload struct {
	Faculty    uint64
	Name       string
	Lectures   uint64
	Periods    uint64
	DayLoads   []uint64
	BusiestDay uint64
}

// RoomUtilization summarizes how much of one room's availability is used.
type RoomUtilization struct {
	Room      uint64
	Name      string
	Occupied  uint64
	Available uint64
	Percent   float64
}

type Analyzer interface {
	// Explain probes every unplaced lecture of the result with one relaxation
	// active at a time and reports which relaxations would seat it. Read-only:
	// neither the input nor the result is mutated.
	Explain(input model.Input, result *Result) Report

	// Workload aggregates committed teaching per faculty, ascending by id.
	Workload(input model.Input, assignment model.Assignment) []FacultyWorkload

	// Utilization aggregates room occupancy against availability, ascending
	// by id.
	Utilization(input model.Input, assignment model.Assignment) []RoomUtilization
}

type standardAnalyzer struct {
	logger  *zap.Logger
	weights model.SoftWeights
}

func NewAnalyzer(logger *zap.Logger, weights model.SoftWeights) Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &standardAnalyzer{
		logger:  logger,
		weights: weights,
	}
}

//** Operations

func (analyzer *standardAnalyzer) Explain(input model.Input, result *Result) Report {
	report := Report{
		Suggestions: make([]Suggestion, 0),
		Stubborn:    make([]uint64, 0),
	}
	if result == nil || len(result.Unplaced) == 0 {
		return report
	}

	weights := effectiveWeights(input, analyzer.weights)
	lectures := result.Lectures
	if lectures == nil {
		lectures = model.DeriveLectures(input)
	}
	eligible := eligibleFaculty(input, lectures)

	board := newBoard(input, lectures)
	board.loadAssignment(result.Assignment)

	for _, entry := range result.Unplaced {
		lecture := lectures[entry.Lecture]
		unlocked := false
		for _, relaxation := range relaxationOrder {
			eval := newRelaxedEvaluator(input, weights, relaxedKinds[relaxation])
			candidates, _, _ := scanCandidates(board, eval, lecture, eligible[entry.Lecture])
			if len(candidates) == 0 {
				continue
			}
			unlocked = true
			report.Suggestions = append(report.Suggestions, Suggestion{
				Lecture:    entry.Lecture,
				Relaxation: relaxation,
				Candidates: len(candidates),
				Magnitude:  magnitude(input, board, lecture, relaxation, eligible[entry.Lecture]),
				Detail:     suggestionDetail(input, lecture, relaxation),
			})
		}
		if !unlocked {
			report.Stubborn = append(report.Stubborn, entry.Lecture)
		}
	}

	slices.SortStableFunc(report.Suggestions, func(a, b Suggestion) int {
		if a.Relaxation != b.Relaxation {
			return cmp.Compare(a.Relaxation.rank(), b.Relaxation.rank())
		}
		if a.Magnitude != b.Magnitude {
			return cmp.Compare(a.Magnitude, b.Magnitude)
		}
		return cmp.Compare(a.Lecture, b.Lecture)
	})

	analyzer.logger.Info("conflict analysis done",
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Int("suggestions", len(report.Suggestions)),
		zap.Int("stubborn", len(report.Stubborn)),
	)
	return report
}

func (analyzer *standardAnalyzer) Workload(input model.Input, assignment model.Assignment) []FacultyWorkload {
	lectures := model.DeriveLectures(input)

	workloads := lo.Map(input.Faculties, func(faculty model.Faculty, _ int) FacultyWorkload {
		return FacultyWorkload{
			Faculty:  faculty.Id,
			Name:     faculty.Name,
			DayLoads: make([]uint64, input.Grid.Days),
		}
	})

	for _, id := range sortedIds(assignment) {
		if id >= uint64(len(lectures)) {
			continue
		}
		lecture, placement := lectures[id], assignment[id]
		if !placementInGrid(input, lecture, placement) {
			continue
		}
		day, _ := input.Grid.Slot(placement.Slot)
		workload := &workloads[placement.Faculty]
		workload.Lectures++
		workload.Periods += lecture.Duration
		workload.DayLoads[day] += lecture.Duration
	}

	for i := range workloads {
		busiest := uint64(0)
		for day, load := range workloads[i].DayLoads {
			if load > workloads[i].DayLoads[busiest] {
				busiest = uint64(day)
			}
		}
		workloads[i].BusiestDay = busiest
	}
	return workloads
}

func (analyzer *standardAnalyzer) Utilization(input model.Input, assignment model.Assignment) []RoomUtilization {
	lectures := model.DeriveLectures(input)

	utilizations := lo.Map(input.Rooms, func(room model.Room, _ int) RoomUtilization {
		available := uint64(0)
		for _, row := range room.Availability {
			available += uint64(lo.Count(row, true))
		}
		return RoomUtilization{
			Room:      room.Id,
			Name:      room.Name,
			Available: available,
		}
	})

	for _, id := range sortedIds(assignment) {
		if id >= uint64(len(lectures)) {
			continue
		}
		lecture, placement := lectures[id], assignment[id]
		if !placementInGrid(input, lecture, placement) {
			continue
		}
		utilizations[placement.Room].Occupied += lecture.Duration
	}

	for i := range utilizations {
		if utilizations[i].Available > 0 {
			utilizations[i].Percent = 100 * float64(utilizations[i].Occupied) / float64(utilizations[i].Available)
		}
	}
	return utilizations
}

//** Suggestion helpers

// magnitude quantifies what the relaxation asks for. Load relaxations report
// the smallest weekly excess among eligible faculty; capacity relaxations the
// seat shortfall against the largest capability-compatible room. Other
// relaxations have no natural size and report zero.
func magnitude(input model.Input, b *board, lecture model.LectureInstance, relaxation Relaxation, eligible []uint64) float64 {
	switch relaxation {
	case RelaxFacultyLoad:
		excesses := lo.Map(eligible, func(faculty uint64, _ int) uint64 {
			needed := b.facultyLoad[faculty] + lecture.Duration
			if limit := input.Faculties[faculty].MaxWeeklyLoad; needed > limit {
				return needed - limit
			}
			return 0
		})
		return float64(lo.Min(excesses))
	case RelaxRoomCapacity:
		required := input.Subjects[lecture.Subject].RequiredTags
		largest := uint64(0)
		for _, room := range input.Rooms {
			if lo.Every(room.Tags, required) && room.Capacity > largest {
				largest = room.Capacity
			}
		}
		if lecture.Students > largest {
			return float64(lecture.Students - largest)
		}
		return 0
	default:
		return 0
	}
}

func suggestionDetail(input model.Input, lecture model.LectureInstance, relaxation Relaxation) string {
	subject := input.Subjects[lecture.Subject].Name
	division := input.Divisions[lecture.Division].Name

	phrases := map[Relaxation]string{
		RelaxFacultyLoad:         "raise an eligible faculty's load cap",
		RelaxFacultyAvailability: "extend an eligible faculty's availability",
		RelaxRoomAvailability:    "extend a compatible room's availability",
		RelaxRoomCapacity:        "add seats to a capability-compatible room",
		RelaxDivisionExclusivity: "let the division overlap with itself",
		RelaxRoomCapability:      "equip a room with the required tags",
	}
	return fmt.Sprintf("%v to seat %q for %q", phrases[relaxation], subject, division)
}
