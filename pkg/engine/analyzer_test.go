package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmesh/timegrid/pkg/model"
)

func TestExplainSuggestsLoadRelaxation(t *testing.T) {
	//** Arrange: a two-period load cap leaves the third lecture out
	input := singleTrackInput(5, 3, 2)
	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.False(t, result.Complete)
	require.Len(t, result.Unplaced, 1)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act
	report := analyzer.Explain(input, result)

	//** Assert
	require.Len(t, report.Suggestions, 1)
	suggestion := report.Suggestions[0]
	assert.Equal(t, uint64(2), suggestion.Lecture)
	assert.Equal(t, RelaxFacultyLoad, suggestion.Relaxation)
	assert.Equal(t, 3, suggestion.Candidates) // the three still-free periods
	assert.InDelta(t, 1.0, suggestion.Magnitude, 1e-9)
	assert.Contains(t, suggestion.Detail, "load cap")
	assert.Empty(t, report.Stubborn)
}

func TestExplainRanksCheaperRelaxationsFirst(t *testing.T) {
	//** Arrange: one lecture blocked by Ada's load cap, another by a missing
	// lab room
	grid := model.Grid{Days: 1, Periods: 5}
	input := model.Input{
		Grid: grid,
		Faculties: []model.Faculty{
			{Id: 0, Name: "Ada", Availability: fullAvail(grid), MaxWeeklyLoad: 2},
			{Id: 1, Name: "Grace", Availability: fullAvail(grid), MaxWeeklyLoad: 8},
		},
		Subjects: []model.Subject{
			{Id: 0, Name: "Algorithms", WeeklyLectures: 3, Duration: 1, EligibleFaculty: []uint64{0}},
			{Id: 1, Name: "Chemistry Lab", WeeklyLectures: 1, Duration: 1, RequiredTags: []string{"lab"}, EligibleFaculty: []uint64{1}},
		},
		Rooms: []model.Room{
			{Id: 0, Name: "R1", Capacity: 30, Availability: fullAvail(grid)},
		},
		Divisions: []model.Division{
			{Id: 0, Name: "CS-A", Students: 25, Subjects: []model.DivisionSubject{{Subject: 0}}},
			{Id: 1, Name: "CS-B", Students: 25, Subjects: []model.DivisionSubject{{Subject: 1}}},
		},
	}
	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.Len(t, result.Unplaced, 2)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act
	report := analyzer.Explain(input, result)

	//** Assert
	require.Len(t, report.Suggestions, 2)
	assert.Equal(t, RelaxFacultyLoad, report.Suggestions[0].Relaxation)
	assert.Equal(t, uint64(2), report.Suggestions[0].Lecture)
	assert.Equal(t, RelaxRoomCapability, report.Suggestions[1].Relaxation)
	assert.Equal(t, uint64(3), report.Suggestions[1].Lecture)
	assert.Zero(t, report.Suggestions[1].Magnitude)
	assert.Empty(t, report.Stubborn)
}

func TestExplainFlagsStubbornLectures(t *testing.T) {
	//** Arrange: the only slot is double booked, which no relaxation touches
	grid := model.Grid{Days: 1, Periods: 1}
	input := model.Input{
		Grid: grid,
		Faculties: []model.Faculty{
			{Id: 0, Name: "Ada", Availability: fullAvail(grid), MaxWeeklyLoad: 4},
		},
		Subjects: []model.Subject{
			{Id: 0, Name: "Algorithms", WeeklyLectures: 1, Duration: 1, EligibleFaculty: []uint64{0}},
		},
		Rooms: []model.Room{
			{Id: 0, Name: "R1", Capacity: 30, Availability: fullAvail(grid)},
		},
		Divisions: []model.Division{
			{Id: 0, Name: "CS-A", Students: 25, Subjects: []model.DivisionSubject{{Subject: 0}}},
			{Id: 1, Name: "CS-B", Students: 25, Subjects: []model.DivisionSubject{{Subject: 0}}},
		},
	}
	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.Len(t, result.Unplaced, 1)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act
	report := analyzer.Explain(input, result)

	//** Assert
	assert.Empty(t, report.Suggestions)
	assert.Equal(t, []uint64{1}, report.Stubborn)
}

func TestExplainIsEmptyWithoutUnplaced(t *testing.T) {
	//** Arrange
	input := singleTrackInput(5, 3, 5)
	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.True(t, result.Complete)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act & Assert
	report := analyzer.Explain(input, result)
	assert.Empty(t, report.Suggestions)
	assert.Empty(t, report.Stubborn)

	report = analyzer.Explain(input, nil)
	assert.Empty(t, report.Suggestions)
	assert.Empty(t, report.Stubborn)
}

func TestWorkloadAggregatesCommittedTeaching(t *testing.T) {
	//** Arrange: two double-period labs land on separate days
	input := labInput()
	input.Faculties = append(input.Faculties, model.Faculty{
		Id: 1, Name: "Grace", Availability: fullAvail(input.Grid), MaxWeeklyLoad: 8,
	})
	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.True(t, result.Complete)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act
	workloads := analyzer.Workload(input, result.Assignment)

	//** Assert
	require.Len(t, workloads, 2)
	assert.Equal(t, "Ada", workloads[0].Name)
	assert.Equal(t, uint64(2), workloads[0].Lectures)
	assert.Equal(t, uint64(4), workloads[0].Periods)
	assert.Equal(t, []uint64{2, 2}, workloads[0].DayLoads)
	assert.Equal(t, uint64(0), workloads[0].BusiestDay)

	// Grace teaches nothing
	assert.Equal(t, "Grace", workloads[1].Name)
	assert.Zero(t, workloads[1].Lectures)
	assert.Zero(t, workloads[1].Periods)
}

func TestUtilizationRelatesOccupancyToAvailability(t *testing.T) {
	//** Arrange
	input := labInput()
	closed := make([][]bool, input.Grid.Periods)
	for period := range closed {
		closed[period] = make([]bool, input.Grid.Days)
	}
	input.Rooms = append(input.Rooms, model.Room{Id: 1, Name: "Closed", Capacity: 30, Availability: closed})

	scheduler := NewScheduler(nil, model.DefaultSoftWeights())
	result, err := scheduler.Build(input, Budget{})
	require.NoError(t, err)
	require.True(t, result.Complete)

	analyzer := NewAnalyzer(nil, model.DefaultSoftWeights())

	//** Act
	utilizations := analyzer.Utilization(input, result.Assignment)

	//** Assert
	require.Len(t, utilizations, 2)
	assert.Equal(t, uint64(4), utilizations[0].Occupied)
	assert.Equal(t, uint64(6), utilizations[0].Available)
	assert.InDelta(t, 100.0*4.0/6.0, utilizations[0].Percent, 1e-9)

	// A room with no availability never divides by zero
	assert.Zero(t, utilizations[1].Occupied)
	assert.Zero(t, utilizations[1].Available)
	assert.Zero(t, utilizations[1].Percent)
}
