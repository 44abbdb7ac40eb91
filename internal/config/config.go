package config

import (
	"fmt"
	"os"
	"time"

	"discernment-trainer/internal/recorder"
	"discernment-trainer/internal/training"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"TRAINER_PORT"`
		Mode string `yaml:"mode" env:"TRAINER_GIN_MODE"` // gin mode: "release", "debug" or "test"
	} `yaml:"server"`

	Logging struct {
		Production bool `yaml:"production" env:"TRAINER_LOG_PRODUCTION"`
	} `yaml:"logging"`

	Catalog struct {
		Path string `yaml:"path" env:"TRAINER_CATALOG_PATH"` // empty uses the bundled content
	} `yaml:"catalog"`

	Exposure struct {
		FirstDelayMs int `yaml:"first_delay_ms"`
		DelayMs      int `yaml:"delay_ms"`
		JitterMs     int `yaml:"jitter_ms"`
	} `yaml:"exposure"`

	Training struct {
		Policy               string `yaml:"policy" env:"TRAINER_TRAINING_POLICY"` // "one-pass" or "streak"
		StreakTarget         int    `yaml:"streak_target" env:"TRAINER_STREAK_TARGET"`
		BaseTimerSeconds     int    `yaml:"base_timer_seconds"`
		MinTimerSeconds      int    `yaml:"min_timer_seconds"`
		TimerStepSeconds     int    `yaml:"timer_step_seconds"`
		PenaltyRefundSeconds int    `yaml:"penalty_refund_seconds"`
	} `yaml:"training"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := config.finish(); err != nil {
		return nil, err
	}
	return config, nil
}

// FromEnv builds the configuration from defaults and TRAINER_* variables only
func FromEnv() (*Config, error) {
	config := &Config{}
	if err := config.finish(); err != nil {
		return nil, err
	}
	return config, nil
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{}
	_ = config.applyDefaults()
	return config
}

// finish layers environment overrides over the file values, then fills defaults
func (c *Config) finish() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return c.applyDefaults()
}

func (c *Config) applyDefaults() error {
	if c.Server.Port == "" {
		c.Server.Port = "8003"
	}

	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if c.Exposure.FirstDelayMs == 0 {
		c.Exposure.FirstDelayMs = int(recorder.DefaultPacing.FirstDelay.Milliseconds())
	}

	if c.Exposure.DelayMs == 0 {
		c.Exposure.DelayMs = int(recorder.DefaultPacing.Delay.Milliseconds())
	}

	if c.Training.Policy == "" {
		c.Training.Policy = string(training.PolicyOnePass)
	}
	if _, err := training.ParsePolicy(c.Training.Policy); err != nil {
		return fmt.Errorf("invalid training config: %w", err)
	}

	if c.Training.StreakTarget == 0 {
		c.Training.StreakTarget = training.DefaultOptions.StreakTarget
	}

	if c.Training.BaseTimerSeconds == 0 {
		c.Training.BaseTimerSeconds = int(training.DefaultOptions.BaseTimer / time.Second)
	}

	if c.Training.MinTimerSeconds == 0 {
		c.Training.MinTimerSeconds = int(training.DefaultOptions.MinTimer / time.Second)
	}

	if c.Training.TimerStepSeconds == 0 {
		c.Training.TimerStepSeconds = int(training.DefaultOptions.TimerStep / time.Second)
	}

	if c.Training.PenaltyRefundSeconds == 0 {
		c.Training.PenaltyRefundSeconds = int(training.DefaultOptions.PenaltyRefund / time.Second)
	}

	// Expand environment variables in the catalog path
	c.Catalog.Path = os.ExpandEnv(c.Catalog.Path)

	return nil
}

// Pacing returns the exposure feed pacing
func (c *Config) Pacing() recorder.Pacing {
	return recorder.Pacing{
		FirstDelay: time.Duration(c.Exposure.FirstDelayMs) * time.Millisecond,
		Delay:      time.Duration(c.Exposure.DelayMs) * time.Millisecond,
		Jitter:     time.Duration(c.Exposure.JitterMs) * time.Millisecond,
	}
}

// TrainingOptions returns the drill options
func (c *Config) TrainingOptions() training.Options {
	return training.Options{
		Policy:        training.Policy(c.Training.Policy),
		StreakTarget:  c.Training.StreakTarget,
		BaseTimer:     time.Duration(c.Training.BaseTimerSeconds) * time.Second,
		MinTimer:      time.Duration(c.Training.MinTimerSeconds) * time.Second,
		TimerStep:     time.Duration(c.Training.TimerStepSeconds) * time.Second,
		PenaltyRefund: time.Duration(c.Training.PenaltyRefundSeconds) * time.Second,
	}
}
