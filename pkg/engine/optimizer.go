package engine

import (
	"slices"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/model"
)

// improvement is one strictly improving, violation-free change: the new
// placements of every affected lecture, keyed by lecture id.
type improvement struct {
	gain       float64
	placements map[uint64]model.Placement
}

type optimizer struct {
	input    model.Input
	lectures []model.LectureInstance
	eval     evaluator
	board    *board
	eligible [][]uint64
	logger   *zap.Logger
}

// optimize runs bounded best-improvement sweeps over a total assignment. Each
// sweep surveys every single-lecture reassignment and every equal-duration
// slot swap, applies only the single best strictly improving change, and stops
// after the given number of sweeps or the first sweep that finds nothing.
func (o *optimizer) optimize(assignment model.Assignment, sweeps int, stats *SearchStats) {
	for sweep := 0; sweep < sweeps; sweep++ {
		stats.Sweeps++
		change, found := o.bestChange(assignment)
		if !found {
			break
		}
		o.apply(assignment, change)
		stats.Improvements++
		o.logger.Debug("applied improvement",
			zap.Float64("gain", change.gain),
			zap.Int("lectures", len(change.placements)),
		)
	}
}

func (o *optimizer) bestChange(assignment model.Assignment) (improvement, bool) {
	best := improvement{}
	found := false
	consider := func(change improvement) {
		if change.gain > 0 && (!found || change.gain > best.gain) {
			best = change
			found = true
		}
	}

	ids := sortedIds(assignment)
	scoreBefore := o.eval.Score(o.board, assignment)

	//** Single-lecture reassignments
	for _, id := range ids {
		lecture := o.lectures[id]
		current := assignment[id]

		o.board.remove(lecture, current)
		_, currentDelta := o.eval.Evaluate(o.board, lecture, current)
		candidates, _, _ := scanCandidates(o.board, o.eval, lecture, o.eligible[id])
		o.board.place(lecture, current)

		if len(candidates) == 0 || candidates[0].placement == current {
			continue
		}
		consider(improvement{
			gain:       candidates[0].delta - currentDelta,
			placements: map[uint64]model.Placement{id: candidates[0].placement},
		})
	}

	//** Equal-duration slot swaps
	for i, idA := range ids {
		for _, idB := range ids[i+1:] {
			if o.lectures[idA].Duration != o.lectures[idB].Duration {
				continue
			}
			if assignment[idA].Slot == assignment[idB].Slot {
				continue
			}
			if change, feasible := o.trySwap(assignment, scoreBefore, idA, idB); feasible {
				consider(change)
			}
		}
	}

	return best, found
}

// trySwap evaluates exchanging the start slots of two lectures, each keeping
// its own faculty, with rooms re-matched across every lecture starting at
// either slot. The board is reverted to its incoming state before returning.
func (o *optimizer) trySwap(assignment model.Assignment, scoreBefore model.SoftScore, idA, idB uint64) (improvement, bool) {
	slotA, slotB := assignment[idA].Slot, assignment[idB].Slot

	//** Affected set: every lecture starting at either slot
	affected := lo.Filter(sortedIds(assignment), func(id uint64, _ int) bool {
		return assignment[id].Slot == slotA || assignment[id].Slot == slotB
	})

	targets := make(map[uint64]uint64, len(affected))
	for _, id := range affected {
		targets[id] = assignment[id].Slot
	}
	targets[idA], targets[idB] = slotB, slotA

	//** Lift the affected lectures off the board
	for _, id := range affected {
		o.board.remove(o.lectures[id], assignment[id])
	}
	restore := func() {
		for _, id := range affected {
			o.board.place(o.lectures[id], assignment[id])
		}
	}

	//** Re-match rooms over the union
	rooms := lo.Map(o.input.Rooms, func(room model.Room, _ int) uint64 { return room.Id })
	feasible := func(id, room uint64) bool {
		lecture := o.lectures[id]
		subject := o.input.Subjects[lecture.Subject]
		if !lo.Every(o.input.Rooms[room].Tags, subject.RequiredTags) || lecture.Students > o.input.Rooms[room].Capacity {
			return false
		}
		return !lo.SomeBy(spanSlots(targets[id], lecture.Duration), func(slot uint64) bool {
			return !o.board.roomFree[room][slot] || o.board.roomBusy[room][slot]
		})
	}
	matched, err := rematchRooms(affected, rooms, feasible)
	if err != nil {
		restore()
		return improvement{}, false
	}

	//** Re-seat sequentially; any violation aborts the swap
	placements := make(map[uint64]model.Placement, len(affected))
	seated := make([]uint64, 0, len(affected))
	legal := true
	for _, id := range affected {
		lecture := o.lectures[id]
		placement := model.Placement{Slot: targets[id], Faculty: assignment[id].Faculty, Room: matched[id]}
		if kinds, _ := o.eval.Evaluate(o.board, lecture, placement); len(kinds) > 0 {
			legal = false
			break
		}
		o.board.place(lecture, placement)
		placements[id] = placement
		seated = append(seated, id)
	}

	if !legal {
		for _, id := range seated {
			o.board.remove(o.lectures[id], placements[id])
		}
		restore()
		return improvement{}, false
	}

	//** Score the proposal, then revert
	proposal := assignment.Clone()
	for id, placement := range placements {
		proposal[id] = placement
	}
	scoreAfter := o.eval.Score(o.board, proposal)

	for _, id := range affected {
		o.board.remove(o.lectures[id], placements[id])
	}
	restore()

	return improvement{gain: scoreBefore.Total - scoreAfter.Total, placements: placements}, true
}

func (o *optimizer) apply(assignment model.Assignment, change improvement) {
	ids := lo.Keys(change.placements)
	slices.Sort(ids)
	for _, id := range ids {
		o.board.remove(o.lectures[id], assignment[id])
	}
	for _, id := range ids {
		o.board.place(o.lectures[id], change.placements[id])
		assignment[id] = change.placements[id]
	}
}
