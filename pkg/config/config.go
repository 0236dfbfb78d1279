package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig
	Engine  EngineConfig
	Weights WeightsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// EngineConfig bounds the search and sizes the snapshot log.
type EngineConfig struct {
	MaxNodes        int64
	TimeBudget      time.Duration
	Sweeps          int
	HistoryCapacity int
}

// WeightsConfig holds the soft-constraint weights applied by the evaluator.
type WeightsConfig struct {
	PreferredSlots  float64
	RoomLocality    float64
	LoadBalance     float64
	DayCompactness  float64
	SlotConsistency float64
}

// Load reads defaults, an optional YAML file and TIMEGRID_* environment
// overrides, in ascending precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TIMEGRID")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Engine: EngineConfig{
			MaxNodes:        v.GetInt64("engine.max_nodes"),
			TimeBudget:      parseDuration(v.GetString("engine.time_budget"), 10*time.Second),
			Sweeps:          v.GetInt("engine.sweeps"),
			HistoryCapacity: v.GetInt("engine.history_capacity"),
		},
		Weights: WeightsConfig{
			PreferredSlots:  v.GetFloat64("weights.preferred_slots"),
			RoomLocality:    v.GetFloat64("weights.room_locality"),
			LoadBalance:     v.GetFloat64("weights.load_balance"),
			DayCompactness:  v.GetFloat64("weights.day_compactness"),
			SlotConsistency: v.GetFloat64("weights.slot_consistency"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("engine.max_nodes", 200000)
	v.SetDefault("engine.time_budget", "10s")
	v.SetDefault("engine.sweeps", 40)
	v.SetDefault("engine.history_capacity", 50)

	v.SetDefault("weights.preferred_slots", 2.5)
	v.SetDefault("weights.room_locality", 1.0)
	v.SetDefault("weights.load_balance", 1.5)
	v.SetDefault("weights.day_compactness", 2.0)
	v.SetDefault("weights.slot_consistency", 1.0)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
