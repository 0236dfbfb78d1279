package engine

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/model"
)

//** Types

// Budget bounds one Build call. Zero fields mean unbounded; negative fields
// are a programming error and panic.
type Budget struct {
	MaxNodes    int           // search-loop entries
	MaxDuration time.Duration // wall clock
}

// SearchStats accounts for the work behind a Result.
type SearchStats struct {
	Nodes           uint64
	Backtracks      uint64
	Elapsed         time.Duration
	Sweeps          int
	Improvements    int
	Partitions      int
	BudgetExhausted bool
}

// Result is the outcome of a search run. An incomplete timetable is a valid
// outcome, not an error: the assignment then holds every lecture that could be
// seated and Unplaced names the rest with what blocked each of them.
type Result struct {
	Assignment model.Assignment
	Complete   bool
	Score      model.SoftScore
	Unplaced   []model.UnplacedLecture
	Lectures   []model.LectureInstance
	Stats      SearchStats
}

type Scheduler interface {
	// Build derives the input's lecture instances and searches for a total
	// conflict-free assignment within the budget. Partial outcomes come back
	// as incomplete Results; an error means the input itself is unusable.
	Build(input model.Input, budget Budget) (*Result, error)

	// Optimize re-runs the soft optimization pass over a completed result and
	// returns an improved copy. Incomplete results are returned as plain
	// copies; negative sweeps panic.
	Optimize(input model.Input, result *Result, sweeps int) (*Result, error)

	// Verify reports whether the assignment seats every lecture the input
	// demands exactly once, under an eligible faculty, without breaking any
	// hard constraint.
	Verify(assignment model.Assignment, input model.Input) bool
}

type standardScheduler struct {
	logger  *zap.Logger
	weights model.SoftWeights
}

func NewScheduler(logger *zap.Logger, weights model.SoftWeights) Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &standardScheduler{
		logger:  logger,
		weights: weights,
	}
}

//** Operations

func (scheduler *standardScheduler) Build(input model.Input, budget Budget) (*Result, error) {
	if budget.MaxNodes < 0 || budget.MaxDuration < 0 {
		panic("search budget must not be negative")
	}
	if err := model.ValidateInput(input); err != nil {
		return nil, err
	}

	weights := effectiveWeights(input, scheduler.weights)
	lectures := model.DeriveLectures(input)
	eligible := eligibleFaculty(input, lectures)
	components := partitionComponents(input, lectures, eligible)

	scheduler.logger.Info("building timetable",
		zap.Int("lectures", len(lectures)),
		zap.Int("partitions", len(components)),
	)
	started := time.Now()

	//** Search every component, in parallel when there is more than one
	results := make([]componentResult, len(components))
	if len(components) <= 1 {
		for position, comp := range components {
			results[position] = runComponent(input, lectures, eligible, comp.lectures, weights, budget)
		}
	} else {
		var waitGroup sync.WaitGroup
		for position, comp := range components {
			waitGroup.Add(1)
			go func(position int, ids []uint64) {
				defer waitGroup.Done()
				results[position] = runComponent(input, lectures, eligible, ids, weights, budget)
			}(position, comp.lectures)
		}
		waitGroup.Wait()
	}

	//** Merge ascending component index
	assignment := make(model.Assignment, len(lectures))
	unplaced := make([]model.UnplacedLecture, 0)
	stats := SearchStats{Partitions: len(components)}
	for _, sub := range results {
		for id, placement := range sub.assignment {
			assignment[id] = placement
		}
		unplaced = append(unplaced, sub.unplaced...)
		stats.Nodes += sub.stats.Nodes
		stats.Backtracks += sub.stats.Backtracks
		stats.BudgetExhausted = stats.BudgetExhausted || sub.stats.BudgetExhausted
	}
	slices.SortFunc(unplaced, func(a, b model.UnplacedLecture) int {
		return cmp.Compare(a.Lecture, b.Lecture)
	})
	stats.Elapsed = time.Since(started)

	//** Score the merged assignment
	board := newBoard(input, lectures)
	board.loadAssignment(assignment)
	score := newEvaluator(input, weights).Score(board, assignment)

	result := &Result{
		Assignment: assignment,
		Complete:   len(assignment) == len(lectures),
		Score:      score,
		Unplaced:   unplaced,
		Lectures:   lectures,
		Stats:      stats,
	}
	if result.Complete {
		scheduler.logger.Info("timetable complete",
			zap.Uint64("nodes", stats.Nodes),
			zap.Uint64("backtracks", stats.Backtracks),
			zap.Duration("elapsed", stats.Elapsed),
			zap.Float64("score", score.Total),
		)
	} else {
		scheduler.logger.Warn("timetable incomplete",
			zap.Int("unplaced", len(unplaced)),
			zap.Bool("budget_exhausted", stats.BudgetExhausted),
			zap.Duration("elapsed", stats.Elapsed),
		)
	}
	return result, nil
}

func (scheduler *standardScheduler) Optimize(input model.Input, result *Result, sweeps int) (*Result, error) {
	if sweeps < 0 {
		panic("sweeps must not be negative")
	}
	if err := model.ValidateInput(input); err != nil {
		return nil, err
	}

	lectures := model.DeriveLectures(input)
	optimized := &Result{
		Assignment: result.Assignment.Clone(),
		Complete:   result.Complete,
		Score:      result.Score,
		Unplaced:   slices.Clone(result.Unplaced),
		Lectures:   lectures,
		Stats:      result.Stats,
	}
	if !result.Complete {
		return optimized, nil // partials keep their seats untouched
	}

	weights := effectiveWeights(input, scheduler.weights)
	board := newBoard(input, lectures)
	board.loadAssignment(optimized.Assignment)
	eval := newEvaluator(input, weights)

	started := time.Now()
	o := &optimizer{
		input:    input,
		lectures: lectures,
		eval:     eval,
		board:    board,
		eligible: eligibleFaculty(input, lectures),
		logger:   scheduler.logger,
	}
	o.optimize(optimized.Assignment, sweeps, &optimized.Stats)
	optimized.Stats.Elapsed += time.Since(started)
	optimized.Score = eval.Score(board, optimized.Assignment)

	scheduler.logger.Info("optimization done",
		zap.Int("sweeps", optimized.Stats.Sweeps),
		zap.Int("improvements", optimized.Stats.Improvements),
		zap.Float64("score", optimized.Score.Total),
	)
	return optimized, nil
}

func (scheduler *standardScheduler) Verify(assignment model.Assignment, input model.Input) bool {
	if err := model.ValidateInput(input); err != nil {
		return false
	}
	return verifyAssignment(input, model.DeriveLectures(input), assignment)
}

//** Component runs

type componentResult struct {
	assignment model.Assignment
	unplaced   []model.UnplacedLecture
	stats      SearchStats
}

// runComponent searches one component on its own board. The budget applies to
// each component independently.
func runComponent(input model.Input, lectures []model.LectureInstance, eligible [][]uint64, ids []uint64, weights model.SoftWeights, budget Budget) componentResult {
	run := newSearchRun(input, lectures, ids, eligible, newEvaluator(input, weights), budget)
	assignment, complete := run.search()

	var unplaced []model.UnplacedLecture
	if !complete {
		unplaced = run.complete(assignment)
	}
	return componentResult{
		assignment: assignment,
		unplaced:   unplaced,
		stats:      run.stats,
	}
}

// effectiveWeights lets an input override the configured soft weights.
func effectiveWeights(input model.Input, configured model.SoftWeights) model.SoftWeights {
	if input.Weights != nil {
		return *input.Weights
	}
	return configured
}
