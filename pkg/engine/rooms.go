package engine

import (
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type unassignableError struct {
	lectures int
	matched  int
}

func (err unassignableError) Error() string {
	return fmt.Sprintf("only %v of %v lectures can be assigned a room", err.matched, err.lectures)
}

// rematchRooms finds one distinct feasible room per lecture through a maximum
// bipartite matching. It returns an unassignableError when no perfect matching
// exists; the matching itself is deterministic over the given orders.
func rematchRooms(lectures []uint64, rooms []uint64, feasible func(lecture, room uint64) bool) (map[uint64]uint64, error) {
	neighbors := func(lectureAny any, roomAny any) (bool, error) {
		return feasible(lectureAny.(uint64), roomAny.(uint64)), nil
	}

	lecturesAny := lo.Map(lectures, func(lecture uint64, _ int) any { return lecture })
	roomsAny := lo.Map(rooms, func(room uint64, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(lecturesAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a perfect one
	if len(matching) < len(lectures) {
		return nil, unassignableError{lectures: len(lectures), matched: len(matching)}
	}

	assignments := make(map[uint64]uint64, len(matching))
	for _, edge := range matching {
		lectureIndex, roomIndex := edge.Node1, edge.Node2-len(lectures)
		assignments[lectures[lectureIndex]] = rooms[roomIndex]
	}
	return assignments, nil
}
