package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Pointers distinguish unset from zero.
type FileConfig struct {
	Input         string   `toml:"input"`
	Metadata      string   `toml:"metadata"`
	OutDir        string   `toml:"out_dir"`
	CLMin         *float64 `toml:"cl_min"`
	CLMax         *float64 `toml:"cl_max"`
	CLSteps       *int     `toml:"cl_steps"`
	VMin          *float64 `toml:"v_min"`
	VMax          *float64 `toml:"v_max"`
	VSteps        *int     `toml:"v_steps"`
	Spacing       string   `toml:"spacing"`
	PooledCLSteps *int     `toml:"pooled_cl_steps"`
	PooledVSteps  *int     `toml:"pooled_v_steps"`
	Workers       *int     `toml:"workers"`
	Watch         *bool    `toml:"watch"`
	Report        *bool    `toml:"report"`
	Residuals     *bool    `toml:"residuals"`
	MetricsFile   string   `toml:"metrics_file"`
	LogLevel      string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
// Unknown keys are rejected so typos in grid options do not go unnoticed.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.pkfit/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pkfit", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("input", fc.Input, &cfg.Input)
	s.setString("metadata", fc.Metadata, &cfg.MetadataPath)
	s.setString("out-dir", fc.OutDir, &cfg.OutDir)
	s.setString("spacing", fc.Spacing, &cfg.Spacing)
	s.setString("metrics-file", fc.MetricsFile, &cfg.MetricsFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setFloat("cl-min", fc.CLMin, &cfg.CLMin)
	s.setFloat("cl-max", fc.CLMax, &cfg.CLMax)
	s.setFloat("v-min", fc.VMin, &cfg.VMin)
	s.setFloat("v-max", fc.VMax, &cfg.VMax)

	s.setInt("cl-steps", fc.CLSteps, &cfg.CLSteps)
	s.setInt("v-steps", fc.VSteps, &cfg.VSteps)
	s.setInt("pooled-cl-steps", fc.PooledCLSteps, &cfg.PooledCLSteps)
	s.setInt("pooled-v-steps", fc.PooledVSteps, &cfg.PooledVSteps)
	s.setInt("workers", fc.Workers, &cfg.Workers)

	s.setBool("watch", fc.Watch, &cfg.Watch)
	s.setBool("report", fc.Report, &cfg.Report)
	s.setBool("residuals", fc.Residuals, &cfg.Residuals)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
