package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmesh/timegrid/pkg/engine"
	appErrors "github.com/classmesh/timegrid/pkg/errors"
	"github.com/classmesh/timegrid/pkg/model"
)

// historyInput is a two-period single-track instance: small enough that a
// result can be spelled out placement by placement.
func historyInput(weekly uint64) model.Input {
	availability := [][]bool{{true}, {true}}
	return model.Input{
		Grid: model.Grid{Days: 1, Periods: 2},
		Faculties: []model.Faculty{
			{Id: 0, Name: "Ada", Availability: availability, MaxWeeklyLoad: 4},
		},
		Subjects: []model.Subject{
			{Id: 0, Name: "Algorithms", WeeklyLectures: weekly, Duration: 1, EligibleFaculty: []uint64{0}},
		},
		Rooms: []model.Room{
			{Id: 0, Name: "R1", Capacity: 30, Availability: availability},
		},
		Divisions: []model.Division{
			{Id: 0, Name: "CS-A", Students: 25, Subjects: []model.DivisionSubject{{Subject: 0}}},
		},
	}
}

func resultAt(slot uint64) *engine.Result {
	return &engine.Result{
		Assignment: model.Assignment{0: {Slot: slot, Faculty: 0, Room: 0}},
		Complete:   true,
	}
}

func TestCommitUndoRedo(t *testing.T) {
	//** Arrange
	manager := NewManager(0)
	input := historyInput(1)

	//** Act
	baseline := manager.Commit("baseline", input, resultAt(0))
	optimized := manager.Commit("optimized", input, resultAt(1))

	//** Assert
	assert.NotEmpty(t, baseline.Id)
	assert.Equal(t, "baseline", baseline.Name)
	assert.False(t, baseline.CreatedAt.IsZero())
	assert.Same(t, optimized, manager.Current())

	undone, err := manager.Undo()
	require.NoError(t, err)
	assert.Same(t, baseline, undone)
	assert.Equal(t, uint64(0), manager.Current().Assignment[0].Slot)

	redone, err := manager.Redo()
	require.NoError(t, err)
	assert.Same(t, optimized, redone)
	assert.Equal(t, uint64(1), manager.Current().Assignment[0].Slot)
}

func TestCommitAfterUndoDropsRedoTail(t *testing.T) {
	//** Arrange
	manager := NewManager(0)
	input := historyInput(1)
	manager.Commit("a", input, resultAt(0))
	manager.Commit("b", input, resultAt(1))

	_, err := manager.Undo()
	require.NoError(t, err)

	//** Act
	manager.Commit("c", input, resultAt(0))

	//** Assert
	listing := manager.List()
	require.Len(t, listing, 2)
	assert.Equal(t, "a", listing[0].Name)
	assert.Equal(t, "c", listing[1].Name)
	assert.False(t, listing[0].Current)
	assert.True(t, listing[1].Current)

	_, err = manager.Redo()
	assert.ErrorIs(t, err, appErrors.ErrNoNextSnapshot)
}

func TestUndoRedoBoundaries(t *testing.T) {
	//** Arrange
	manager := NewManager(0)

	//** Act & Assert: nothing committed yet
	_, err := manager.Undo()
	assert.ErrorIs(t, err, appErrors.ErrNoPreviousSnapshot)
	_, err = manager.Redo()
	assert.ErrorIs(t, err, appErrors.ErrNoNextSnapshot)
	assert.Nil(t, manager.Current())

	// A single snapshot has nothing before it
	manager.Commit("only", historyInput(1), resultAt(0))
	_, err = manager.Undo()
	assert.ErrorIs(t, err, appErrors.ErrNoPreviousSnapshot)
}

func TestDiffReportsMoves(t *testing.T) {
	//** Arrange
	manager := NewManager(0)
	input := historyInput(1)
	before := manager.Commit("before", input, resultAt(0))
	after := manager.Commit("after", input, resultAt(1))
	empty := manager.Commit("empty", input, &engine.Result{Assignment: model.Assignment{}})

	t.Run("moved placement carries both sides", func(t *testing.T) {
		changes, err := manager.Diff(before.Id, after.Id)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, uint64(0), changes[0].Lecture)
		require.NotNil(t, changes[0].Old)
		require.NotNil(t, changes[0].New)
		assert.Equal(t, uint64(0), changes[0].Old.Slot)
		assert.Equal(t, uint64(1), changes[0].New.Slot)
	})

	t.Run("identical snapshots diff to nothing", func(t *testing.T) {
		changes, err := manager.Diff(before.Id, before.Id)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("newly placed lecture has a nil old side", func(t *testing.T) {
		changes, err := manager.Diff(empty.Id, before.Id)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Nil(t, changes[0].Old)
		require.NotNil(t, changes[0].New)
		assert.Equal(t, uint64(0), changes[0].New.Slot)
	})

	t.Run("unknown snapshot id", func(t *testing.T) {
		_, err := manager.Diff(before.Id, "missing")
		assert.ErrorIs(t, err, appErrors.ErrSnapshotNotFound)
	})
}

func TestCommitEvictsBeyondCapacity(t *testing.T) {
	//** Arrange
	manager := NewManager(2)
	input := historyInput(1)

	//** Act
	oldest := manager.Commit("a", input, resultAt(0))
	manager.Commit("b", input, resultAt(1))
	newest := manager.Commit("c", input, resultAt(0))

	//** Assert
	listing := manager.List()
	require.Len(t, listing, 2)
	assert.Equal(t, "b", listing[0].Name)
	assert.Equal(t, "c", listing[1].Name)
	assert.Same(t, newest, manager.Current())

	_, err := manager.Diff(oldest.Id, newest.Id)
	assert.ErrorIs(t, err, appErrors.ErrSnapshotNotFound)
}

func TestNewManagerPanicsOnNegativeCapacity(t *testing.T) {
	assert.Panics(t, func() { NewManager(-1) })
}

func TestCommitRecordsViolations(t *testing.T) {
	//** Arrange: both lectures of the week collide on the first period
	input := historyInput(2)
	result := &engine.Result{
		Assignment: model.Assignment{
			0: {Slot: 0, Faculty: 0, Room: 0},
			1: {Slot: 0, Faculty: 0, Room: 0},
		},
	}
	manager := NewManager(0)

	//** Act
	snapshot := manager.Commit("clash", input, result)

	//** Assert: the collision is attributed to the later lecture
	require.Len(t, snapshot.Violations, 3)
	kinds := []model.ViolationKind{
		snapshot.Violations[0].Kind,
		snapshot.Violations[1].Kind,
		snapshot.Violations[2].Kind,
	}
	assert.Equal(t, []model.ViolationKind{
		model.FacultyDoubleBooked,
		model.RoomDoubleBooked,
		model.DivisionDoubleBooked,
	}, kinds)
	for _, violation := range snapshot.Violations {
		assert.Equal(t, uint64(1), violation.Lecture)
		assert.NotEmpty(t, violation.Detail)
	}
}

func TestCommitClonesTheAssignment(t *testing.T) {
	//** Arrange
	manager := NewManager(0)
	input := historyInput(1)
	result := resultAt(0)

	//** Act
	snapshot := manager.Commit("frozen", input, result)
	result.Assignment[0] = model.Placement{Slot: 1, Faculty: 0, Room: 0}

	//** Assert
	assert.Equal(t, uint64(0), snapshot.Assignment[0].Slot)
}
