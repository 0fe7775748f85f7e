// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typetest/internal/model"
)

// Defaults for settings missing from the config file.
const (
	DefaultMode       = model.ModeWords
	DefaultWords      = 20
	DefaultTimeLimit  = 60
	DefaultDifficulty = model.DifficultyEasy
	DefaultLang       = "english"
	DefaultLayout     = model.LayoutDefault
	DefaultRestartKey = true
	DefaultCorrect    = "#F0F0F0"
	DefaultIncorrect  = "#FF4D4F"
	DefaultPending    = "#8C8C8C"
	DefaultWeakTop    = 8
	DefaultWeakFactor = 2.0
	DefaultWeakWindow = 20
)

// Limits enforced by the settings menu and validation.
const (
	MinWords     = 5
	MinTimeLimit = 10
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Test  TestConfig  `toml:"test"`
	Theme ThemeConfig `toml:"theme"`
}

// TestConfig maps test-related settings.
type TestConfig struct {
	Mode       *string  `toml:"mode"`
	Words      *int     `toml:"words"`
	TimeLimit  *int     `toml:"time"`
	Difficulty *string  `toml:"difficulty"`
	Lang       *string  `toml:"lang"`
	Layout     *string  `toml:"layout"`
	RestartKey *bool    `toml:"restart-key"`
	FocusWeak  *bool    `toml:"focus-weak"`
	WeakTop    *int     `toml:"weak-top"`
	WeakFactor *float64 `toml:"weak-factor"`
	WeakWindow *int     `toml:"weak-window"`
}

// ThemeConfig maps colour settings.
type ThemeConfig struct {
	Correct   *string `toml:"correct"`
	Incorrect *string `toml:"incorrect"`
	Pending   *string `toml:"pending"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() model.Settings {
	return model.Settings{
		Mode:       DefaultMode,
		Words:      DefaultWords,
		TimeLimit:  DefaultTimeLimit,
		Difficulty: DefaultDifficulty,
		Lang:       DefaultLang,
		Layout:     DefaultLayout,
		RestartKey: DefaultRestartKey,
		Theme: model.Theme{
			Correct:   DefaultCorrect,
			Incorrect: DefaultIncorrect,
			Pending:   DefaultPending,
		},
		WeakTop:    DefaultWeakTop,
		WeakFactor: DefaultWeakFactor,
		WeakWindow: DefaultWeakWindow,
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Settings applies the file values on top of the defaults.
func (c FileConfig) Settings() (model.Settings, error) {
	s := Defaults()
	if c.Test.Mode != nil {
		mode, err := model.ParseMode(*c.Test.Mode)
		if err != nil {
			return model.Settings{}, err
		}
		s.Mode = mode
	}
	if c.Test.Difficulty != nil {
		d, err := model.ParseDifficulty(*c.Test.Difficulty)
		if err != nil {
			return model.Settings{}, err
		}
		s.Difficulty = d
	}
	if c.Test.Layout != nil {
		layout, err := model.ParseLayout(*c.Test.Layout)
		if err != nil {
			return model.Settings{}, err
		}
		s.Layout = layout
	}
	setInt(&s.Words, c.Test.Words)
	setInt(&s.TimeLimit, c.Test.TimeLimit)
	setString(&s.Lang, c.Test.Lang)
	setBool(&s.RestartKey, c.Test.RestartKey)
	setBool(&s.FocusWeak, c.Test.FocusWeak)
	setInt(&s.WeakTop, c.Test.WeakTop)
	setInt(&s.WeakWindow, c.Test.WeakWindow)
	if c.Test.WeakFactor != nil {
		s.WeakFactor = *c.Test.WeakFactor
	}
	setString(&s.Theme.Correct, c.Theme.Correct)
	setString(&s.Theme.Incorrect, c.Theme.Incorrect)
	setString(&s.Theme.Pending, c.Theme.Pending)
	return s, nil
}

// FromSettings builds a fully populated file config.
func FromSettings(s model.Settings) FileConfig {
	mode := string(s.Mode)
	difficulty := string(s.Difficulty)
	layout := string(s.Layout)
	return FileConfig{
		Test: TestConfig{
			Mode:       &mode,
			Words:      &s.Words,
			TimeLimit:  &s.TimeLimit,
			Difficulty: &difficulty,
			Lang:       &s.Lang,
			Layout:     &layout,
			RestartKey: &s.RestartKey,
			FocusWeak:  &s.FocusWeak,
			WeakTop:    &s.WeakTop,
			WeakFactor: &s.WeakFactor,
			WeakWindow: &s.WeakWindow,
		},
		Theme: ThemeConfig{
			Correct:   &s.Theme.Correct,
			Incorrect: &s.Theme.Incorrect,
			Pending:   &s.Theme.Pending,
		},
	}
}

// SaveConfig writes cfg to path, replacing the file atomically.
func SaveConfig(path string, cfg FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := fmt.Fprintln(tmpFile, "# typetest configuration"); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := toml.NewEncoder(tmpFile).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks settings that would make a test impossible to run.
func Validate(s model.Settings) error {
	if s.Words < 1 {
		return fmt.Errorf("--words must be > 0")
	}
	if s.TimeLimit < 1 {
		return fmt.Errorf("--time must be > 0")
	}
	if _, err := model.ParseMode(string(s.Mode)); err != nil {
		return err
	}
	if _, err := model.ParseDifficulty(string(s.Difficulty)); err != nil {
		return err
	}
	if _, err := model.ParseLayout(string(s.Layout)); err != nil {
		return err
	}
	if s.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if s.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if s.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}
