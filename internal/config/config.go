// Package config loads generation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"crosswarped.com/ravengen/pkg/distractor"
	"crosswarped.com/ravengen/pkg/generator"
	"crosswarped.com/ravengen/pkg/layout"
	"crosswarped.com/ravengen/pkg/rules"
)

// ErrInvalid reports a configuration value that cannot be used.
var ErrInvalid = errors.New("config: invalid")

// HeldOut names an attribute class and the rule that governs it in training.
type HeldOut struct {
	Class     string `yaml:"class"`
	TrainRule string `yaml:"train_rule"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the on-disk configuration.
type Config struct {
	Seed           uint64    `yaml:"seed"`
	Samples        int       `yaml:"samples"`
	Val            int       `yaml:"val"`
	Test           int       `yaml:"test"`
	HeldOut        []HeldOut `yaml:"held_out,omitempty"`
	Mesh           bool      `yaml:"mesh"`
	Configurations []string  `yaml:"configurations"`
	MaxAttempts    int       `yaml:"max_attempts"`
	Strategy       string    `yaml:"strategy"`
	Workers        int       `yaml:"workers"`
	Output         Output    `yaml:"output"`
	Log            Log       `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	g := generator.DefaultConfig()
	c := Config{
		Seed:        g.Seed,
		Samples:     g.Samples,
		Val:         g.Val,
		Test:        g.Test,
		MaxAttempts: g.MaxAttempts,
		Strategy:    string(g.Strategy),
		Output:      Output{Kind: OutputJSONLines, Path: "-"},
		Log:         Log{Level: "info"},
	}
	for _, id := range g.Configurations {
		c.Configurations = append(c.Configurations, string(id))
	}
	return c
}

// Load reads path on top of the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate checks every field that can be checked without connecting anywhere.
func (c Config) Validate() error {
	g, err := c.Generator()
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}
	return c.Output.Validate()
}

// Generator converts the configuration into generator settings.
func (c Config) Generator() (generator.Config, error) {
	strategy, err := distractor.ParseStrategy(c.Strategy)
	if err != nil {
		return generator.Config{}, err
	}
	g := generator.Config{
		Seed:        c.Seed,
		Samples:     c.Samples,
		Val:         c.Val,
		Test:        c.Test,
		Mesh:        c.Mesh,
		MaxAttempts: c.MaxAttempts,
		Strategy:    strategy,
		Workers:     c.Workers,
	}
	for _, s := range c.Configurations {
		id, err := layout.ParseID(s)
		if err != nil {
			return generator.Config{}, err
		}
		g.Configurations = append(g.Configurations, id)
	}
	for _, h := range c.HeldOut {
		class, err := rules.ParseClass(h.Class)
		if err != nil {
			return generator.Config{}, err
		}
		name, err := rules.ParseName(h.TrainRule)
		if err != nil {
			return generator.Config{}, err
		}
		g.HeldOut = append(g.HeldOut, rules.HeldOut{Class: class, TrainRule: name})
	}
	return g, nil
}

// Logger builds a zap logger at the configured level.
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", l.Level, ErrInvalid)
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
