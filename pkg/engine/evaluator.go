package engine

import "github.com/classmesh/timegrid/pkg/model"

type evaluator interface {
	// Judges seating the lecture at the placement on top of the board. Returns
	// every hard-constraint kind the seating would break, canonically ordered
	// and deduplicated, plus the soft-score delta of the seating (negated
	// penalty growth, so positive means the timetable gets better). The delta
	// is only computed for legal seatings; the board is never mutated.
	Evaluate(b *board, lecture model.LectureInstance, placement model.Placement) ([]model.ViolationKind, float64)

	// Scores the whole assignment currently sitting on the board.
	Score(b *board, assignment model.Assignment) model.SoftScore
}
