package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/classmesh/timegrid/pkg/engine"
	"github.com/classmesh/timegrid/pkg/model"
)

var csvHeader = []string{"Instance", "Lectures", "Placed", "Complete", "Nodes", "Backtracks", "Duration(ms)", "Score"}

func main() {
	directoryPtr := flag.String("dir", "testdata", "directory holding the JSON instances to benchmark")
	outPtr := flag.String("out", "benchmark_results.csv", "path of the CSV report")
	maxNodesPtr := flag.Int("max-nodes", 200000, "search-node budget per instance, 0 for unbounded")
	timeBudgetPtr := flag.Duration("time-budget", 10*time.Second, "wall-clock budget per instance, 0 for unbounded")
	sweepsPtr := flag.Int("sweeps", 40, "optimization sweeps per complete instance")
	flag.Parse()

	files, err := os.ReadDir(*directoryPtr)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	scheduler := engine.NewScheduler(nil, model.DefaultSoftWeights())
	budget := engine.Budget{MaxNodes: *maxNodesPtr, MaxDuration: *timeBudgetPtr}

	records := make([][]string, 0, len(files))
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		filename := filepath.Join(*directoryPtr, file.Name())
		fmt.Printf("Benchmarking instance \"%v\"\n", filename)

		input, err := model.InputFromJson(filename)
		if err != nil {
			log.Fatalf("cannot parse input file \"%v\": %v", filename, err)
		}

		result, err := scheduler.Build(input, budget)
		if err != nil {
			log.Fatalf("cannot build \"%v\": %v", filename, err)
		}
		if result.Complete {
			result, err = scheduler.Optimize(input, result, *sweepsPtr)
			if err != nil {
				log.Fatalf("cannot optimize \"%v\": %v", filename, err)
			}
		}

		records = append(records, benchRecord(file.Name(), result))
	}

	if err := toCsv(*outPtr, records); err != nil {
		log.Panicf("cannot write CSV report: %v", err)
	}
}

// benchRecord flattens one instance outcome into a CSV record.
func benchRecord(name string, result *engine.Result) []string {
	return []string{
		name,
		fmt.Sprintf("%d", len(result.Lectures)),
		fmt.Sprintf("%d", len(result.Assignment)),
		fmt.Sprintf("%v", result.Complete),
		fmt.Sprintf("%d", result.Stats.Nodes),
		fmt.Sprintf("%d", result.Stats.Backtracks),
		fmt.Sprintf("%d", result.Stats.Elapsed.Milliseconds()),
		fmt.Sprintf("%.2f", result.Score.Total),
	}
}

func toCsv(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
