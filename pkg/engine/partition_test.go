package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmesh/timegrid/pkg/model"
)

func TestPartitionSplitsDisjointCampuses(t *testing.T) {
	//** Arrange
	input := splitCampusInput()
	lectures := model.DeriveLectures(input)
	eligible := eligibleFaculty(input, lectures)

	//** Act
	components := partitionComponents(input, lectures, eligible)

	//** Assert
	require.Len(t, components, 2)
	assert.Equal(t, []uint64{0}, components[0].divisions)
	assert.Equal(t, []uint64{0, 1}, components[0].lectures)
	assert.Equal(t, []uint64{1}, components[1].divisions)
	assert.Equal(t, []uint64{2, 3}, components[1].lectures)
}

func TestPartitionMergesOnSharedResources(t *testing.T) {
	t.Run("shared faculty joins divisions", func(t *testing.T) {
		//** Arrange: Ada now teaches on both campuses
		input := splitCampusInput()
		input.Subjects[1].EligibleFaculty = []uint64{0}
		lectures := model.DeriveLectures(input)
		eligible := eligibleFaculty(input, lectures)

		//** Act
		components := partitionComponents(input, lectures, eligible)

		//** Assert
		require.Len(t, components, 1)
		assert.Equal(t, []uint64{0, 1}, components[0].divisions)
		assert.Equal(t, []uint64{0, 1, 2, 3}, components[0].lectures)
	})

	t.Run("shared rooms join divisions", func(t *testing.T) {
		//** Arrange: without tag requirements every room serves every lecture
		input := splitCampusInput()
		input.Subjects[0].RequiredTags = nil
		input.Subjects[1].RequiredTags = nil
		lectures := model.DeriveLectures(input)
		eligible := eligibleFaculty(input, lectures)

		//** Act
		components := partitionComponents(input, lectures, eligible)

		//** Assert
		require.Len(t, components, 1)
		assert.Equal(t, []uint64{0, 1}, components[0].divisions)
	})
}

func TestPartitionMergesTransitively(t *testing.T) {
	//** Arrange: D0 and D1 share Ada, D1 and D2 share the south room
	grid := model.Grid{Days: 1, Periods: 3}
	input := model.Input{
		Grid: grid,
		Faculties: []model.Faculty{
			{Id: 0, Name: "Ada", Availability: fullAvail(grid), MaxWeeklyLoad: 8},
			{Id: 1, Name: "Grace", Availability: fullAvail(grid), MaxWeeklyLoad: 8},
		},
		Subjects: []model.Subject{
			{Id: 0, Name: "Algorithms", WeeklyLectures: 1, Duration: 1, RequiredTags: []string{"north"}, EligibleFaculty: []uint64{0}},
			{Id: 1, Name: "Geometry", WeeklyLectures: 1, Duration: 1, RequiredTags: []string{"south"}, EligibleFaculty: []uint64{0}},
			{Id: 2, Name: "Statistics", WeeklyLectures: 1, Duration: 1, RequiredTags: []string{"south"}, EligibleFaculty: []uint64{1}},
		},
		Rooms: []model.Room{
			{Id: 0, Name: "N-101", Capacity: 30, Tags: []string{"north"}, Availability: fullAvail(grid)},
			{Id: 1, Name: "S-201", Capacity: 30, Tags: []string{"south"}, Availability: fullAvail(grid)},
		},
		Divisions: []model.Division{
			{Id: 0, Name: "CS-A", Students: 25, Subjects: []model.DivisionSubject{{Subject: 0}}},
			{Id: 1, Name: "CS-B", Students: 25, Subjects: []model.DivisionSubject{{Subject: 1}}},
			{Id: 2, Name: "CS-C", Students: 25, Subjects: []model.DivisionSubject{{Subject: 2}}},
		},
	}
	lectures := model.DeriveLectures(input)
	eligible := eligibleFaculty(input, lectures)

	//** Act
	components := partitionComponents(input, lectures, eligible)

	//** Assert
	require.Len(t, components, 1)
	assert.Equal(t, []uint64{0, 1, 2}, components[0].divisions)
	assert.Equal(t, []uint64{0, 1, 2}, components[0].lectures)
}

func TestPartitionEmptyInput(t *testing.T) {
	//** Act & Assert
	assert.Nil(t, partitionComponents(model.Input{}, nil, nil))
}
