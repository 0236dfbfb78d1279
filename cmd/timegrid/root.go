package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/classmesh/timegrid/pkg/config"
	"github.com/classmesh/timegrid/pkg/logger"
	"github.com/classmesh/timegrid/pkg/model"
)

// Exit codes of the generate command beyond the usual 0 and 1: an incomplete
// timetable and a timetable that failed its verification pass.
const (
	exitIncomplete   = 20
	exitFailedVerify = 15
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "timegrid",
	Short: "Constraint-based academic timetable scheduler",
	Long: `timegrid builds conflict-free academic timetables from a JSON description of
faculty, subjects, rooms and divisions, and explains what blocks the lectures
it cannot seat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// bootstrap loads the configuration and builds the logger every subcommand
// shares. The --log-level flag beats the configured level.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func configuredWeights(cfg *config.Config) model.SoftWeights {
	return model.SoftWeights{
		PreferredSlots:  cfg.Weights.PreferredSlots,
		RoomLocality:    cfg.Weights.RoomLocality,
		LoadBalance:     cfg.Weights.LoadBalance,
		DayCompactness:  cfg.Weights.DayCompactness,
		SlotConsistency: cfg.Weights.SlotConsistency,
	}
}
