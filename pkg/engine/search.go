package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/classmesh/timegrid/pkg/model"
)

// frame tracks one lecture on the backtracking stack: the candidates scanned
// when the frame was opened and the cursor of the next one to try.
type frame struct {
	candidates []candidate
	next       int
}

// searchRun owns the state of one backtracking search over a set of lectures.
type searchRun struct {
	input    model.Input
	lectures []model.LectureInstance
	eval     evaluator
	board    *board
	order    []uint64   // lecture ids, most constrained first
	eligible [][]uint64 // sorted eligible faculty per lecture id

	budget  Budget
	started time.Time
	stats   SearchStats
}

func newSearchRun(input model.Input, lectures []model.LectureInstance, ids []uint64, eligible [][]uint64, eval evaluator, budget Budget) *searchRun {
	return &searchRun{
		input:    input,
		lectures: lectures,
		eval:     eval,
		board:    newBoard(input, lectures),
		order:    orderLectures(input, lectures, ids, eligible),
		eligible: eligible,
		budget:   budget,
		started:  time.Now(),
	}
}

// exhausted reports whether the run spent its budget. Checked at every entry
// of the search loop; zero budgets never exhaust.
func (run *searchRun) exhausted() bool {
	if run.budget.MaxNodes > 0 && run.stats.Nodes >= uint64(run.budget.MaxNodes) {
		return true
	}
	if run.budget.MaxDuration > 0 && time.Since(run.started) >= run.budget.MaxDuration {
		return true
	}
	return false
}

// search drives the backtracking loop until the order is fully seated, the
// candidate space is exhausted, or the budget runs out. It returns the deepest
// assignment reached and whether it seats the whole order.
func (run *searchRun) search() (model.Assignment, bool) {
	best := model.Assignment{}
	if len(run.order) == 0 {
		return best, true
	}

	assignment := make(model.Assignment, len(run.order))
	stack := make([]frame, 0, len(run.order))
	stack = append(stack, run.openFrame(0))

	for len(stack) > 0 {
		if run.exhausted() {
			run.stats.BudgetExhausted = true
			break
		}
		run.stats.Nodes++

		top := &stack[len(stack)-1]
		lecture := run.lectures[run.order[len(stack)-1]]

		//** Seat the next candidate of the top frame
		if top.next < len(top.candidates) {
			chosen := top.candidates[top.next]
			top.next++

			run.board.place(lecture, chosen.placement)
			assignment[lecture.Id] = chosen.placement

			if len(assignment) > len(best) {
				best = assignment.Clone()
			}
			if len(stack) == len(run.order) {
				return best, true
			}
			stack = append(stack, run.openFrame(len(stack)))
			continue
		}

		//** Frame exhausted: backtrack and unseat the parent's choice
		stack = stack[:len(stack)-1]
		run.stats.Backtracks++
		if len(stack) == 0 {
			break
		}
		parent := stack[len(stack)-1]
		parentLecture := run.lectures[run.order[len(stack)-1]]
		run.board.remove(parentLecture, parent.candidates[parent.next-1].placement)
		delete(assignment, parentLecture.Id)
	}

	return best, false
}

func (run *searchRun) openFrame(position int) frame {
	lecture := run.lectures[run.order[position]]
	candidates, _, _ := scanCandidates(run.board, run.eval, lecture, run.eligible[lecture.Id])
	return frame{candidates: candidates}
}

// complete greedily extends a partial assignment: unplaced lectures are
// re-scanned ascending, each taking its best candidate, until a full pass
// seats nothing. Every survivor then provably has zero legal candidates left
// and is reported with the first blocking kind of its final scan.
func (run *searchRun) complete(assignment model.Assignment) []model.UnplacedLecture {
	run.board = newBoard(run.input, run.lectures)
	run.board.loadAssignment(assignment)

	sortedOrder := slices.Clone(run.order)
	slices.Sort(sortedOrder)
	unplaced := lo.Filter(sortedOrder, func(id uint64, _ int) bool {
		_, placed := assignment[id]
		return !placed
	})

	for progress := true; progress; {
		progress = false
		remaining := make([]uint64, 0, len(unplaced))
		for _, id := range unplaced {
			lecture := run.lectures[id]
			candidates, _, _ := scanCandidates(run.board, run.eval, lecture, run.eligible[id])
			if len(candidates) == 0 {
				remaining = append(remaining, id)
				continue
			}
			run.board.place(lecture, candidates[0].placement)
			assignment[id] = candidates[0].placement
			progress = true
		}
		unplaced = remaining
	}

	//** Final scan: capture what blocks each survivor
	report := make([]model.UnplacedLecture, 0, len(unplaced))
	for _, id := range unplaced {
		_, blocking, _ := scanCandidates(run.board, run.eval, run.lectures[id], run.eligible[id])
		report = append(report, model.UnplacedLecture{Lecture: id, Blocking: blocking})
	}
	return report
}

// orderLectures sorts lecture ids most-constrained-first: ascending product of
// eligible faculty, compatible rooms and joint free start slots, ties broken
// by ascending lecture id. The ordering is static, computed on the empty grid.
func orderLectures(input model.Input, lectures []model.LectureInstance, ids []uint64, eligible [][]uint64) []uint64 {
	keys := make(map[uint64]uint64, len(ids))
	for _, id := range ids {
		lecture := lectures[id]
		rooms := compatibleRooms(input, lecture)
		keys[id] = uint64(len(eligible[id])) * uint64(len(rooms)) * jointFreeStartSlots(input, lecture, eligible[id], rooms)
	}

	order := slices.Clone(ids)
	slices.SortFunc(order, func(a, b uint64) int {
		if keys[a] != keys[b] {
			return cmp.Compare(keys[a], keys[b])
		}
		return cmp.Compare(a, b)
	})
	return order
}

// eligibleFaculty resolves each lecture's eligible faculty, sorted ascending.
func eligibleFaculty(input model.Input, lectures []model.LectureInstance) [][]uint64 {
	return lo.Map(lectures, func(lecture model.LectureInstance, _ int) []uint64 {
		eligible := lo.Uniq(input.Subjects[lecture.Subject].EligibleFaculty)
		slices.Sort(eligible)
		return eligible
	})
}

// compatibleRooms lists the rooms able to host the lecture at all: required
// tags present and enough seats. Availability is a per-slot concern.
func compatibleRooms(input model.Input, lecture model.LectureInstance) []uint64 {
	required := input.Subjects[lecture.Subject].RequiredTags
	rooms := make([]uint64, 0, len(input.Rooms))
	for _, room := range input.Rooms {
		if room.Capacity >= lecture.Students && lo.Every(room.Tags, required) {
			rooms = append(rooms, room.Id)
		}
	}
	return rooms
}

// jointFreeStartSlots counts the start slots where the lecture fits the day
// and at least one eligible faculty and one compatible room are available
// across its whole span.
func jointFreeStartSlots(input model.Input, lecture model.LectureInstance, eligible []uint64, rooms []uint64) uint64 {
	count := uint64(0)
	for slot := uint64(0); slot < input.Grid.Slots(); slot++ {
		if _, period := input.Grid.Slot(slot); !input.Grid.FitsDay(period, lecture.Duration) {
			continue
		}
		facultyFree := lo.SomeBy(eligible, func(faculty uint64) bool {
			return windowAvailable(input.Grid, input.Faculties[faculty].Availability, slot, lecture.Duration)
		})
		roomFree := lo.SomeBy(rooms, func(room uint64) bool {
			return windowAvailable(input.Grid, input.Rooms[room].Availability, slot, lecture.Duration)
		})
		if facultyFree && roomFree {
			count++
		}
	}
	return count
}

// windowAvailable reports whether a [period][day] bitmap is free across the
// whole span starting at the slot.
func windowAvailable(grid model.Grid, availability [][]bool, slot, duration uint64) bool {
	day, period := grid.Slot(slot)
	for i := uint64(0); i < duration; i++ {
		if !availability[period+i][day] {
			return false
		}
	}
	return true
}
