package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/engine"
	"github.com/classmesh/timegrid/pkg/history"
	"github.com/classmesh/timegrid/pkg/model"
)

var (
	generateFile   string
	generateOut    string
	generateNodes  int
	generateTime   time.Duration
	generateSweeps int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build an optimized timetable from a JSON input file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, err := bootstrap()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot start: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()

		//** Effective knobs: explicit flags beat configuration
		budget := engine.Budget{
			MaxNodes:    int(cfg.Engine.MaxNodes),
			MaxDuration: cfg.Engine.TimeBudget,
		}
		if cmd.Flags().Changed("max-nodes") {
			budget.MaxNodes = generateNodes
		}
		if cmd.Flags().Changed("time-budget") {
			budget.MaxDuration = generateTime
		}
		sweeps := cfg.Engine.Sweeps
		if cmd.Flags().Changed("sweeps") {
			sweeps = generateSweeps
		}

		input, err := model.InputFromJson(generateFile)
		if err != nil {
			log.Fatal("cannot load input", zap.Error(err))
		}

		scheduler := engine.NewScheduler(log, configuredWeights(cfg))
		manager := history.NewManager(cfg.Engine.HistoryCapacity)

		//** Build, commit the baseline, then polish
		result, err := scheduler.Build(input, budget)
		if err != nil {
			log.Fatal("build failed", zap.Error(err))
		}
		snapshot := manager.Commit("baseline", input, result)

		if result.Complete {
			optimized, err := scheduler.Optimize(input, result, sweeps)
			if err != nil {
				log.Fatal("optimization failed", zap.Error(err))
			}
			baseline := snapshot
			snapshot = manager.Commit("optimized", input, optimized)

			changes, err := manager.Diff(baseline.Id, snapshot.Id)
			if err != nil {
				log.Fatal("cannot diff snapshots", zap.Error(err))
			}
			log.Info("optimization diff",
				zap.Int("moved_lectures", len(changes)),
				zap.Float64("score_before", result.Score.Total),
				zap.Float64("score_after", optimized.Score.Total),
			)
			result = optimized
		}

		if err := writeSchedule(generateOut, input, result, snapshot); err != nil {
			log.Fatal("cannot write schedule", zap.Error(err))
		}

		if !result.Complete {
			log.Sync()
			os.Exit(exitIncomplete)
		}
		if !scheduler.Verify(result.Assignment, input) {
			log.Error("timetable failed verification")
			log.Sync()
			os.Exit(exitFailedVerify)
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "path to the JSON input file")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write the schedule JSON here instead of stdout")
	generateCmd.Flags().IntVar(&generateNodes, "max-nodes", 0, "search-node budget, 0 for unbounded")
	generateCmd.Flags().DurationVar(&generateTime, "time-budget", 0, "wall-clock search budget, 0 for unbounded")
	generateCmd.Flags().IntVar(&generateSweeps, "sweeps", 0, "optimization sweeps")
	generateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(generateCmd)
}

//** Output rendering

type lectureOutput struct {
	Lecture  uint64 `json:"lecture"`
	Subject  string `json:"subject"`
	Division string `json:"division"`
	SubGroup string `json:"subGroup,omitempty"`
	Faculty  string `json:"faculty"`
	Room     string `json:"room"`
	Day      uint64 `json:"day"`
	Period   uint64 `json:"period"`
	Duration uint64 `json:"duration"`
}

type unplacedOutput struct {
	Lecture  uint64 `json:"lecture"`
	Subject  string `json:"subject"`
	Division string `json:"division"`
	Blocking string `json:"blocking"`
}

type scheduleOutput struct {
	Id        string                     `json:"id"`
	Name      string                     `json:"name"`
	CreatedAt time.Time                  `json:"createdAt"`
	Complete  bool                       `json:"complete"`
	Score     model.SoftScore            `json:"score"`
	Lectures  []lectureOutput            `json:"lectures"`
	Divisions map[string][]lectureOutput `json:"divisions"`
	Unplaced  []unplacedOutput           `json:"unplaced"`
}

func writeSchedule(outFile string, input model.Input, result *engine.Result, schedule *model.Schedule) error {
	output := scheduleOutput{
		Id:        schedule.Id,
		Name:      schedule.Name,
		CreatedAt: schedule.CreatedAt,
		Complete:  result.Complete,
		Score:     result.Score,
		Lectures:  make([]lectureOutput, 0, len(result.Assignment)),
		Divisions: make(map[string][]lectureOutput),
		Unplaced:  make([]unplacedOutput, 0, len(result.Unplaced)),
	}

	//** Flat listing, ascending lecture id
	ids := lo.Keys(result.Assignment)
	slices.Sort(ids)
	for _, id := range ids {
		output.Lectures = append(output.Lectures, renderLecture(input, result.Lectures[id], result.Assignment[id]))
	}

	//** Per-division view
	for division, placed := range model.DivisionView(input.Grid, result.Lectures, result.Assignment) {
		name := input.Divisions[division].Name
		output.Divisions[name] = lo.Map(placed, func(entry model.PlacedLecture, _ int) lectureOutput {
			return renderLecture(input, entry.Lecture, entry.Placement)
		})
	}

	for _, entry := range result.Unplaced {
		lecture := result.Lectures[entry.Lecture]
		output.Unplaced = append(output.Unplaced, unplacedOutput{
			Lecture:  entry.Lecture,
			Subject:  input.Subjects[lecture.Subject].Name,
			Division: input.Divisions[lecture.Division].Name,
			Blocking: string(entry.Blocking),
		})
	}

	outputJson, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}

	if outFile == "" {
		fmt.Println(string(outputJson))
		return nil
	}
	return os.WriteFile(outFile, outputJson, 0666)
}

func renderLecture(input model.Input, lecture model.LectureInstance, placement model.Placement) lectureOutput {
	day, period := input.Grid.Slot(placement.Slot)
	subGroup := ""
	if lecture.SubGroup != nil {
		subGroup = input.Divisions[lecture.Division].SubGroups[*lecture.SubGroup].Name
	}
	return lectureOutput{
		Lecture:  lecture.Id,
		Subject:  input.Subjects[lecture.Subject].Name,
		Division: input.Divisions[lecture.Division].Name,
		SubGroup: subGroup,
		Faculty:  input.Faculties[placement.Faculty].Name,
		Room:     input.Rooms[placement.Room].Name,
		Day:      day,
		Period:   period,
		Duration: lecture.Duration,
	}
}
