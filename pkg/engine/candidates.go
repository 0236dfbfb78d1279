package engine

import (
	"cmp"
	"slices"

	"github.com/classmesh/timegrid/pkg/model"
)

// candidate is one legal seating of a lecture together with its soft appeal.
type candidate struct {
	placement model.Placement
	delta     float64
}

// scanCandidates enumerates every placement of the lecture against the board:
// start slots ascending, rooms ascending, eligible faculty ascending. Legal
// triples come back best-first (stable over the scan order, so ties keep the
// slot-room-faculty order); the first violation kind seen across the scan is
// reported as the lecture's blocking kind.
func scanCandidates(b *board, eval evaluator, lecture model.LectureInstance, eligible []uint64) ([]candidate, model.ViolationKind, bool) {
	candidates := make([]candidate, 0)
	var blocking model.ViolationKind
	blocked := false

	for slot := uint64(0); slot < b.grid.Slots(); slot++ {
		if _, period := b.grid.Slot(slot); !b.grid.FitsDay(period, lecture.Duration) {
			continue
		}
		for room := uint64(0); room < uint64(len(b.roomFree)); room++ {
			for _, faculty := range eligible {
				placement := model.Placement{Slot: slot, Faculty: faculty, Room: room}
				kinds, delta := eval.Evaluate(b, lecture, placement)
				if len(kinds) == 0 {
					candidates = append(candidates, candidate{placement: placement, delta: delta})
					continue
				}
				if !blocked {
					blocking = kinds[0]
					blocked = true
				}
			}
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.delta, a.delta)
	})
	return candidates, blocking, blocked
}
