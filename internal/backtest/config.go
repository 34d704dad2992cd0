package backtest

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"

	"github.com/quantfold/hedgesim/internal/decision"
	"github.com/quantfold/hedgesim/internal/risk"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// CalendarPolicy selects how the engine enumerates simulation dates.
type CalendarPolicy string

const (
	// CalendarWeekdays iterates Monday through Friday between start and end.
	CalendarWeekdays CalendarPolicy = "weekdays"
	// CalendarData iterates the distinct dates present in the bar source.
	CalendarData CalendarPolicy = "data"
)

// Config is the full run configuration, loaded from YAML.
type Config struct {
	InitialCapital float64                    `yaml:"initial_capital" validate:"gt=0"`
	Symbols        []string                   `yaml:"symbols" validate:"required,min=1,unique,dive,required"`
	StartTime      optional.Option[time.Time] `yaml:"start_time"`
	EndTime        optional.Option[time.Time] `yaml:"end_time"`
	Calendar       CalendarPolicy             `yaml:"calendar" validate:"oneof=weekdays data"`
	Risk           risk.Config                `yaml:"risk"`
	Decision       decision.Config            `yaml:"decision"`
}

// UnmarshalYAML implements custom unmarshaling for Config so the optional
// time bounds can be written as plain timestamps.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		InitialCapital float64         `yaml:"initial_capital"`
		Symbols        []string        `yaml:"symbols"`
		StartTime      *time.Time      `yaml:"start_time"`
		EndTime        *time.Time      `yaml:"end_time"`
		Calendar       CalendarPolicy  `yaml:"calendar"`
		Risk           risk.Config     `yaml:"risk"`
		Decision       decision.Config `yaml:"decision"`
	}

	raw := rawConfig{
		Calendar: CalendarWeekdays,
		Risk:     risk.DefaultConfig(),
		Decision: decision.DefaultConfig(),
	}

	if err := value.Decode(&raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config YAML", err)
	}

	c.InitialCapital = raw.InitialCapital
	c.Symbols = raw.Symbols
	c.Calendar = raw.Calendar
	c.Risk = raw.Risk
	c.Decision = raw.Decision

	if raw.StartTime != nil {
		c.StartTime = optional.Some(*raw.StartTime)
	}

	if raw.EndTime != nil {
		c.EndTime = optional.Some(*raw.EndTime)
	}

	return nil
}

// DefaultConfig returns a config with every tunable at its default. Symbols
// and capital still have to be filled in before Validate passes.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 0,
		Symbols:        nil,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		Calendar:       CalendarWeekdays,
		Risk:           risk.DefaultConfig(),
		Decision:       decision.DefaultConfig(),
	}
}

// ParseConfig parses and validates a YAML config document.
func ParseConfig(content string) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		if errors.GetCode(err) != errors.ErrCodeUnknown {
			return Config{}, err
		}

		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config YAML", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadConfig reads, parses and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return ParseConfig(string(content))
}

// Validate fails fast on any invalid field. Every violation is a fatal
// configuration error.
func (c *Config) Validate() error {
	// Concern-specific checks run first so their error codes survive; the
	// struct-level validation below would fold nested violations into the
	// generic configuration code.
	if c.InitialCapital <= 0 {
		return errors.Newf(errors.ErrCodeInvalidCapital, "initial capital must be positive, got %f", c.InitialCapital)
	}

	if len(c.Symbols) == 0 {
		return errors.New(errors.ErrCodeNoSymbols, "at least one symbol is required")
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end time is before start time")
	}

	if c.Calendar == CalendarWeekdays && (c.StartTime.IsNone() || c.EndTime.IsNone()) {
		return errors.New(errors.ErrCodeInvalidCalendar, "weekdays calendar requires both start_time and end_time")
	}

	if err := c.Risk.Validate(); err != nil {
		return err
	}

	if err := c.Decision.Validate(); err != nil {
		return err
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	return nil
}
