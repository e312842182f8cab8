package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Path string `mapstructure:"path"`
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ViewConfig struct {
	WindowSize int `mapstructure:"window_size"`
}

// MoveConfig holds the distances behind the named move presets.
type MoveConfig struct {
	Farther  int `mapstructure:"farther"`
	Farthest int `mapstructure:"farthest"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	View    ViewConfig    `mapstructure:"view"`
	Move    MoveConfig    `mapstructure:"move"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

func setDefaults(homePath string) {
	viper.SetDefault("db.path", filepath.Join(homePath, ".ordinal"))
	viper.SetDefault("db.name", "ordinal")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("view.window_size", 20)
	viper.SetDefault("move.farther", 25)
	viper.SetDefault("move.farthest", 50)
	viper.SetDefault("metrics.addr", "")
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.View.WindowSize < 1 {
		return Config{}, fmt.Errorf("view.window_size must be at least 1, got %d", cfg.View.WindowSize)
	}
	return cfg, nil
}

// distance turns a --by value into a number of places: a count, or one of
// the presets farther and farthest.
func (c Config) distance(by string) (int, error) {
	switch by {
	case "farther":
		return c.Move.Farther, nil
	case "farthest":
		return c.Move.Farthest, nil
	}
	n, err := strconv.Atoi(by)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("--by must be a positive count, farther or farthest, got %q", by)
	}
	return n, nil
}
