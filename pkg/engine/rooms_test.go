package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRematchRoomsFindsPerfectMatching(t *testing.T) {
	//** Arrange: the second lecture tolerates only the second room
	lectures := []uint64{10, 20}
	rooms := []uint64{5, 6}
	feasible := func(lecture, room uint64) bool {
		return !(lecture == 20 && room == 5)
	}

	//** Act
	assignments, err := rematchRooms(lectures, rooms, feasible)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, map[uint64]uint64{10: 5, 20: 6}, assignments)
}

func TestRematchRoomsReroutesThroughAugmentingPaths(t *testing.T) {
	//** Arrange: both lectures accept room 7, only the first accepts room 8
	lectures := []uint64{1, 2}
	rooms := []uint64{7, 8}
	feasible := func(lecture, room uint64) bool {
		return !(lecture == 2 && room == 8)
	}

	//** Act
	assignments, err := rematchRooms(lectures, rooms, feasible)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, map[uint64]uint64{1: 8, 2: 7}, assignments)
}

func TestRematchRoomsRejectsImperfectMatching(t *testing.T) {
	//** Arrange: two lectures fight over a single room
	lectures := []uint64{10, 20}
	rooms := []uint64{5}

	//** Act
	assignments, err := rematchRooms(lectures, rooms, func(lecture, room uint64) bool { return true })

	//** Assert
	assert.Nil(t, assignments)
	assert.EqualError(t, err, "only 1 of 2 lectures can be assigned a room")
}

func TestRematchRoomsEmptyLectures(t *testing.T) {
	//** Act
	assignments, err := rematchRooms(nil, []uint64{5, 6}, func(lecture, room uint64) bool { return true })

	//** Assert
	require.NoError(t, err)
	assert.Empty(t, assignments)
}
