package cliconfig

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/pkfit/internal/domain"
)

// DefaultOutDir is where results are written when no directory is given.
const DefaultOutDir = "pkfit-out"

// Config holds CLI configuration for pkfit.
type Config struct {
	Input        string `flag:"input" validate:"required"`
	MetadataPath string `flag:"metadata"`
	OutDir       string `flag:"out-dir" validate:"required"`

	CLMin   float64 `flag:"cl-min"`
	CLMax   float64 `flag:"cl-max"`
	CLSteps int     `flag:"cl-steps"`
	VMin    float64 `flag:"v-min"`
	VMax    float64 `flag:"v-max"`
	VSteps  int     `flag:"v-steps"`
	Spacing string  `flag:"spacing" validate:"oneof=linear log"`

	// Pooled grid steps; zero reuses the subject grid steps.
	PooledCLSteps int `flag:"pooled-cl-steps" validate:"gte=0"`
	PooledVSteps  int `flag:"pooled-v-steps" validate:"gte=0"`

	Workers     int    `flag:"workers" validate:"gte=0"`
	Watch       bool   `flag:"watch"`
	Report      bool   `flag:"report"`
	Residuals   bool   `flag:"residuals"`
	MetricsFile string `flag:"metrics-file"`
	LogLevel    string `flag:"log-level" validate:"oneof=debug info warn error"`
}

// DefaultConfig returns a Config with default values.
// The grid covers CL 0.1..50 and V 1..300 on a 25x25 log grid.
func DefaultConfig() Config {
	return Config{
		OutDir:    DefaultOutDir,
		CLMin:     0.1,
		CLMax:     50,
		CLSteps:   25,
		VMin:      1,
		VMax:      300,
		VSteps:    25,
		Spacing:   string(domain.SpacingLog),
		Report:    true,
		Residuals: true,
		LogLevel:  "info",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	return v
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domain.ConfigurationError{Field: verrs[0].Field(), Reason: message(verrs[0])}
		}
		return err
	}

	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if err := c.GridSpec().Validate(); err != nil {
		return err
	}
	return c.PooledGridSpec().Validate()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation: %s", e.Tag())
	}
}

// GridSpec returns the subject grid.
func (c Config) GridSpec() domain.GridSpec {
	return domain.GridSpec{
		CLMin:   c.CLMin,
		CLMax:   c.CLMax,
		CLSteps: c.CLSteps,
		VMin:    c.VMin,
		VMax:    c.VMax,
		VSteps:  c.VSteps,
		Spacing: domain.Spacing(c.Spacing),
	}
}

// PooledGridSpec returns the grid for the pooled fit: the subject grid with
// the pooled step counts substituted where set.
func (c Config) PooledGridSpec() domain.GridSpec {
	g := c.GridSpec()
	if c.PooledCLSteps > 0 {
		g.CLSteps = c.PooledCLSteps
	}
	if c.PooledVSteps > 0 {
		g.VSteps = c.PooledVSteps
	}
	return g
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
// Out-of-range values are kept so Validate can reject them.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value from a pointer if not nil and flag not changed.
// Grid bounds may legitimately be zero, so presence is what matters.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Out-of-range values are kept so Validate can reject them.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// ApplyEnvConfig applies configuration from environment variables (PKFIT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("input", os.Getenv("PKFIT_INPUT"), &cfg.Input)
	s.setString("metadata", os.Getenv("PKFIT_METADATA"), &cfg.MetadataPath)
	s.setString("out-dir", os.Getenv("PKFIT_OUT_DIR"), &cfg.OutDir)
	s.setString("spacing", os.Getenv("PKFIT_SPACING"), &cfg.Spacing)
	s.setString("metrics-file", os.Getenv("PKFIT_METRICS_FILE"), &cfg.MetricsFile)
	s.setString("log-level", os.Getenv("PKFIT_LOG_LEVEL"), &cfg.LogLevel)

	floats := []struct {
		flag, env string
		dst       *float64
	}{
		{"cl-min", "PKFIT_CL_MIN", &cfg.CLMin},
		{"cl-max", "PKFIT_CL_MAX", &cfg.CLMax},
		{"v-min", "PKFIT_V_MIN", &cfg.VMin},
		{"v-max", "PKFIT_V_MAX", &cfg.VMax},
	}
	for _, f := range floats {
		if err := s.setFloatFromString(f.flag, os.Getenv(f.env), f.dst); err != nil {
			return err
		}
	}

	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"cl-steps", "PKFIT_CL_STEPS", &cfg.CLSteps},
		{"v-steps", "PKFIT_V_STEPS", &cfg.VSteps},
		{"pooled-cl-steps", "PKFIT_POOLED_CL_STEPS", &cfg.PooledCLSteps},
		{"pooled-v-steps", "PKFIT_POOLED_V_STEPS", &cfg.PooledVSteps},
		{"workers", "PKFIT_WORKERS", &cfg.Workers},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, os.Getenv(i.env), i.dst); err != nil {
			return err
		}
	}

	s.setBoolFromString("watch", os.Getenv("PKFIT_WATCH"), &cfg.Watch)
	s.setBoolFromString("report", os.Getenv("PKFIT_REPORT"), &cfg.Report)
	s.setBoolFromString("residuals", os.Getenv("PKFIT_RESIDUALS"), &cfg.Residuals)

	return nil
}
