package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/engine"
	"github.com/classmesh/timegrid/pkg/model"
)

var analyzeFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Explain blocked lectures and report workload and room utilization",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log, err := bootstrap()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot start: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()

		input, err := model.InputFromJson(analyzeFile)
		if err != nil {
			log.Fatal("cannot load input", zap.Error(err))
		}

		weights := configuredWeights(cfg)
		scheduler := engine.NewScheduler(log, weights)
		analyzer := engine.NewAnalyzer(log, weights)

		budget := engine.Budget{
			MaxNodes:    int(cfg.Engine.MaxNodes),
			MaxDuration: cfg.Engine.TimeBudget,
		}
		result, err := scheduler.Build(input, budget)
		if err != nil {
			log.Fatal("build failed", zap.Error(err))
		}

		report := analyzer.Explain(input, result)
		output := analysisOutput{
			Complete: result.Complete,
			Score:    result.Score,
			Suggestions: lo.Map(report.Suggestions, func(suggestion engine.Suggestion, _ int) suggestionOutput {
				lecture := result.Lectures[suggestion.Lecture]
				return suggestionOutput{
					Lecture:    suggestion.Lecture,
					Subject:    input.Subjects[lecture.Subject].Name,
					Division:   input.Divisions[lecture.Division].Name,
					Relaxation: string(suggestion.Relaxation),
					Candidates: suggestion.Candidates,
					Magnitude:  suggestion.Magnitude,
					Detail:     suggestion.Detail,
				}
			}),
			Stubborn: report.Stubborn,
			Workload: lo.Map(analyzer.Workload(input, result.Assignment), func(workload engine.FacultyWorkload, _ int) workloadOutput {
				return workloadOutput{
					Faculty:    workload.Name,
					Lectures:   workload.Lectures,
					Periods:    workload.Periods,
					DayLoads:   workload.DayLoads,
					BusiestDay: workload.BusiestDay,
				}
			}),
			Utilization: lo.Map(analyzer.Utilization(input, result.Assignment), func(utilization engine.RoomUtilization, _ int) utilizationOutput {
				return utilizationOutput{
					Room:      utilization.Name,
					Occupied:  utilization.Occupied,
					Available: utilization.Available,
					Percent:   utilization.Percent,
				}
			}),
		}

		outputJson, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			log.Fatal("cannot marshal analysis", zap.Error(err))
		}
		fmt.Println(string(outputJson))
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "path to the JSON input file")
	analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

type suggestionOutput struct {
	Lecture    uint64  `json:"lecture"`
	Subject    string  `json:"subject"`
	Division   string  `json:"division"`
	Relaxation string  `json:"relaxation"`
	Candidates int     `json:"candidates"`
	Magnitude  float64 `json:"magnitude"`
	Detail     string  `json:"detail"`
}

type workloadOutput struct {
	Faculty    string   `json:"faculty"`
	Lectures   uint64   `json:"lectures"`
	Periods    uint64   `json:"periods"`
	DayLoads   []uint64 `json:"dayLoads"`
	BusiestDay uint64   `json:"busiestDay"`
}

type utilizationOutput struct {
	Room      string  `json:"room"`
	Occupied  uint64  `json:"occupied"`
	Available uint64  `json:"available"`
	Percent   float64 `json:"percent"`
}

type analysisOutput struct {
	Complete    bool                `json:"complete"`
	Score       model.SoftScore     `json:"score"`
	Suggestions []suggestionOutput  `json:"suggestions"`
	Stubborn    []uint64            `json:"stubborn"`
	Workload    []workloadOutput    `json:"workload"`
	Utilization []utilizationOutput `json:"utilization"`
}
