package cliconfig

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/bft-labs/pkfit/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	want := domain.GridSpec{CLMin: 0.1, CLMax: 50, CLSteps: 25, VMin: 1, VMax: 300, VSteps: 25, Spacing: domain.SpacingLog}
	if got := cfg.GridSpec(); got != want {
		t.Errorf("GridSpec() = %+v, want %+v", got, want)
	}
	if cfg.OutDir != DefaultOutDir {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, DefaultOutDir)
	}
	if !cfg.Report || !cfg.Residuals {
		t.Errorf("Report/Residuals = %v/%v, want enabled", cfg.Report, cfg.Residuals)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Input = "data.csv"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid defaults with input", mutate: func(*Config) {}},
		{name: "missing input", mutate: func(c *Config) { c.Input = "" }, wantField: "input"},
		{name: "missing out dir", mutate: func(c *Config) { c.OutDir = "" }, wantField: "out-dir"},
		{name: "unknown spacing", mutate: func(c *Config) { c.Spacing = "cubic" }, wantField: "spacing"},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantField: "log-level"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantField: "workers"},
		{name: "negative pooled steps", mutate: func(c *Config) { c.PooledVSteps = -2 }, wantField: "pooled-v-steps"},
		{name: "inverted cl range", mutate: func(c *Config) { c.CLMin, c.CLMax = 10, 1 }, wantField: "cl_min"},
		{name: "zero v steps", mutate: func(c *Config) { c.VSteps = 0 }, wantField: "v_steps"},
		{name: "log spacing with zero lower bound", mutate: func(c *Config) { c.VMin = 0 }, wantField: "v_min"},
		{name: "linear spacing with zero lower bound", mutate: func(c *Config) { c.VMin, c.Spacing = 0, "linear" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("Validate() error = %v, want configuration error", err)
			}
			var ce *domain.ConfigurationError
			if !errors.As(err, &ce) || ce.Field != tt.wantField {
				t.Errorf("error field = %v, want %s", err, tt.wantField)
			}
		})
	}
}

func TestConfig_ValidateDerivesWorkers(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Workers, runtime.NumCPU())
	}

	cfg.Workers = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestConfig_PooledGridSpec(t *testing.T) {
	cfg := validConfig()
	if cfg.PooledGridSpec() != cfg.GridSpec() {
		t.Error("pooled grid should equal subject grid when no override is set")
	}

	cfg.PooledCLSteps = 49
	g := cfg.PooledGridSpec()
	if g.CLSteps != 49 || g.VSteps != 25 {
		t.Errorf("PooledGridSpec steps = %dx%d, want 49x25", g.CLSteps, g.VSteps)
	}
	if g.CLMin != cfg.CLMin || g.VMax != cfg.VMax || g.Spacing != domain.SpacingLog {
		t.Errorf("PooledGridSpec bounds changed: %+v", g)
	}
}

func TestConfigSetter(t *testing.T) {
	s := newConfigSetter(map[string]bool{"changed": true})

	t.Run("setString", func(t *testing.T) {
		dst := "original"
		s.setString("changed", "new", &dst)
		if dst != "original" {
			t.Errorf("changed flag overwritten: %q", dst)
		}
		s.setString("unchanged", "", &dst)
		if dst != "original" {
			t.Errorf("empty value overwrote: %q", dst)
		}
		s.setString("unchanged", "new", &dst)
		if dst != "new" {
			t.Errorf("dst = %q, want new", dst)
		}
	})

	t.Run("setInt", func(t *testing.T) {
		dst := 5
		s.setInt("unchanged", nil, &dst)
		if dst != 5 {
			t.Errorf("nil value overwrote: %d", dst)
		}
		nine, zero := 9, 0
		s.setInt("changed", &nine, &dst)
		if dst != 5 {
			t.Errorf("changed flag overwritten: %d", dst)
		}
		s.setInt("unchanged", &zero, &dst)
		if dst != 0 {
			t.Errorf("dst = %d, want 0", dst)
		}
	})

	t.Run("setIntFromString", func(t *testing.T) {
		dst := 5
		if err := s.setIntFromString("unchanged", "x", &dst); err == nil {
			t.Error("expected parse error")
		}
		if err := s.setIntFromString("unchanged", "-3", &dst); err != nil || dst != -3 {
			t.Errorf("dst = %d, err = %v, want -3 kept for validation", dst, err)
		}
	})

	t.Run("setFloat", func(t *testing.T) {
		dst := 1.5
		s.setFloat("unchanged", nil, &dst)
		if dst != 1.5 {
			t.Errorf("nil value overwrote: %v", dst)
		}
		zero := 0.0
		s.setFloat("changed", &zero, &dst)
		if dst != 1.5 {
			t.Errorf("changed flag overwritten: %v", dst)
		}
		s.setFloat("unchanged", &zero, &dst)
		if dst != 0 {
			t.Errorf("dst = %v, want 0", dst)
		}
	})

	t.Run("setFloatFromString", func(t *testing.T) {
		dst := 1.0
		if err := s.setFloatFromString("unchanged", "abc", &dst); err == nil {
			t.Error("expected parse error")
		}
		if err := s.setFloatFromString("unchanged", "2.5", &dst); err != nil || dst != 2.5 {
			t.Errorf("dst = %v, err = %v", dst, err)
		}
	})

	t.Run("setBoolFromString", func(t *testing.T) {
		dst := false
		s.setBoolFromString("unchanged", "1", &dst)
		if !dst {
			t.Error("\"1\" should be true")
		}
		s.setBoolFromString("unchanged", "yes", &dst)
		if dst {
			t.Error("\"yes\" should be false")
		}
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
		{"", false, true},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)
			l.Debug().Msg("dbg-msg")
			l.Info().Msg("info-msg")

			out := buf.String()
			if got := strings.Contains(out, "dbg-msg"); got != tt.debugSeen {
				t.Errorf("debug logged = %v, want %v", got, tt.debugSeen)
			}
			if got := strings.Contains(out, "info-msg"); got != tt.infoSeen {
				t.Errorf("info logged = %v, want %v", got, tt.infoSeen)
			}
		})
	}
}
