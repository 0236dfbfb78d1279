package engine

import (
	"github.com/classmesh/timegrid/pkg/model"
)

// component is one independently schedulable island of divisions: no eligible
// faculty and no compatible room is shared across component boundaries, so
// searches over different components can never collide.
type component struct {
	divisions []uint64
	lectures  []uint64
}

// partitionComponents groups divisions into connected components over shared
// eligible faculty and shared compatible rooms. Components come back ordered
// by their smallest division id; lecture ids within a component ascend.
func partitionComponents(input model.Input, lectures []model.LectureInstance, eligible [][]uint64) []component {
	divisions := len(input.Divisions)
	if divisions == 0 {
		return nil
	}

	//** Resource footprint per division
	facultySets := make([]map[uint64]bool, divisions)
	roomSets := make([]map[uint64]bool, divisions)
	for division := 0; division < divisions; division++ {
		facultySets[division] = make(map[uint64]bool)
		roomSets[division] = make(map[uint64]bool)
	}
	for _, lecture := range lectures {
		for _, faculty := range eligible[lecture.Id] {
			facultySets[lecture.Division][faculty] = true
		}
		for _, room := range compatibleRooms(input, lecture) {
			roomSets[lecture.Division][room] = true
		}
	}

	//** Union divisions sharing faculty or rooms
	parent := make([]int, divisions)
	for division := range parent {
		parent[division] = division
	}
	var find func(int) int
	find = func(division int) int {
		if parent[division] != division {
			parent[division] = find(parent[division])
		}
		return parent[division]
	}
	union := func(a, b int) {
		parent[find(a)] = find(b)
	}
	for a := 0; a < divisions; a++ {
		for b := a + 1; b < divisions; b++ {
			if intersects(facultySets[a], facultySets[b]) || intersects(roomSets[a], roomSets[b]) {
				union(a, b)
			}
		}
	}

	//** Collect components, ordered by smallest division id
	index := make(map[int]int)
	components := make([]component, 0)
	for division := 0; division < divisions; division++ {
		root := find(division)
		position, known := index[root]
		if !known {
			position = len(components)
			index[root] = position
			components = append(components, component{})
		}
		components[position].divisions = append(components[position].divisions, uint64(division))
	}
	for _, lecture := range lectures {
		position := index[find(int(lecture.Division))]
		components[position].lectures = append(components[position].lectures, lecture.Id)
	}
	return components
}

func intersects(a, b map[uint64]bool) bool {
	for key := range a {
		if b[key] {
			return true
		}
	}
	return false
}
