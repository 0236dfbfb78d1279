package history

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/classmesh/timegrid/pkg/engine"
	appErrors "github.com/classmesh/timegrid/pkg/errors"
	"github.com/classmesh/timegrid/pkg/model"
)

//** Types

// SnapshotInfo is one line of the history listing.
type SnapshotInfo struct {
	Id        string
	Name      string
	CreatedAt time.Time
	Current   bool
}

// Manager keeps an append-only log of committed schedules with a cursor.
// History is strictly linear: committing after an undo discards the redo tail.
// Snapshots are immutable once committed, so concurrent reads are safe while a
// search is running elsewhere.
type Manager struct {
	mu       sync.RWMutex
	capacity int
	log      []*model.Schedule
	cursor   int
}

// NewManager returns an empty history. capacity bounds how many snapshots are
// kept (oldest evicted first); zero keeps everything. Negative capacities
// panic.
func NewManager(capacity int) *Manager {
	if capacity < 0 {
		panic("history capacity must not be negative")
	}
	return &Manager{
		capacity: capacity,
		log:      make([]*model.Schedule, 0),
		cursor:   -1,
	}
}

//** Operations

// Commit turns a search result into an immutable named snapshot and makes it
// current. The assignment is deep-copied and re-verified, so the snapshot
// carries its own violation report no matter what produced the result.
func (manager *Manager) Commit(name string, input model.Input, result *engine.Result) *model.Schedule {
	lectures := result.Lectures
	if lectures == nil {
		lectures = model.DeriveLectures(input)
	}

	schedule := &model.Schedule{
		Id:         uuid.NewString(),
		Name:       name,
		CreatedAt:  time.Now(),
		Assignment: result.Assignment.Clone(),
		Score:      result.Score,
		Violations: engine.ScanViolations(input, lectures, result.Assignment),
		Unplaced:   slices.Clone(result.Unplaced),
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	//** Truncate the redo tail, append, advance
	manager.log = manager.log[:manager.cursor+1]
	manager.log = append(manager.log, schedule)
	manager.cursor++

	//** Evict the oldest snapshot beyond capacity
	if manager.capacity > 0 && len(manager.log) > manager.capacity {
		manager.log = slices.Delete(manager.log, 0, 1)
		manager.cursor--
	}

	return schedule
}

// Undo moves the cursor to the previous snapshot and returns it.
func (manager *Manager) Undo() (*model.Schedule, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.cursor <= 0 {
		return nil, appErrors.ErrNoPreviousSnapshot
	}
	manager.cursor--
	return manager.log[manager.cursor], nil
}

// Redo moves the cursor to the next snapshot and returns it.
func (manager *Manager) Redo() (*model.Schedule, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.cursor+1 >= len(manager.log) {
		return nil, appErrors.ErrNoNextSnapshot
	}
	manager.cursor++
	return manager.log[manager.cursor], nil
}

// Diff lists how placements moved between two snapshots, ascending by lecture
// id. A nil side of a change means the lecture was not placed in that
// snapshot.
func (manager *Manager) Diff(idA, idB string) ([]model.PlacementChange, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	before, err := manager.find(idA)
	if err != nil {
		return nil, err
	}
	after, err := manager.find(idB)
	if err != nil {
		return nil, err
	}

	ids := lo.Uniq(append(lo.Keys(before.Assignment), lo.Keys(after.Assignment)...))
	slices.Sort(ids)

	changes := make([]model.PlacementChange, 0)
	for _, id := range ids {
		oldPlacement, wasPlaced := before.Assignment[id]
		newPlacement, isPlaced := after.Assignment[id]
		if wasPlaced && isPlaced && oldPlacement == newPlacement {
			continue
		}

		change := model.PlacementChange{Lecture: id}
		if wasPlaced {
			change.Old = lo.ToPtr(oldPlacement)
		}
		if isPlaced {
			change.New = lo.ToPtr(newPlacement)
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// List returns the log in commit order, flagging the current snapshot.
func (manager *Manager) List() []SnapshotInfo {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	return lo.Map(manager.log, func(schedule *model.Schedule, position int) SnapshotInfo {
		return SnapshotInfo{
			Id:        schedule.Id,
			Name:      schedule.Name,
			CreatedAt: schedule.CreatedAt,
			Current:   position == manager.cursor,
		}
	})
}

// Current returns the snapshot under the cursor, nil when nothing has been
// committed yet.
func (manager *Manager) Current() *model.Schedule {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if manager.cursor < 0 {
		return nil
	}
	return manager.log[manager.cursor]
}

func (manager *Manager) find(id string) (*model.Schedule, error) {
	schedule, found := lo.Find(manager.log, func(schedule *model.Schedule) bool {
		return schedule.Id == id
	})
	if !found {
		return nil, appErrors.Newf(appErrors.CodeSnapshotNotFound, "snapshot %v not found", id)
	}
	return schedule, nil
}
