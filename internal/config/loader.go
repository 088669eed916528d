package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/backmassage/cloak/internal/codec"
)

// fileConfig is the on-disk shape of a config file. Pointer fields tell an
// absent key apart from a zero value.
type fileConfig struct {
	Mode       string `toml:"mode" yaml:"mode" json:"mode"`
	Marker     string `toml:"marker" yaml:"marker" json:"marker"`
	Extension  string `toml:"extension" yaml:"extension" json:"extension"`
	OutputDir  string `toml:"output_dir" yaml:"output_dir" json:"output_dir"`
	Workers    *int   `toml:"workers" yaml:"workers" json:"workers"`
	DryRun     *bool  `toml:"dry_run" yaml:"dry_run" json:"dry_run"`
	Report     string `toml:"report" yaml:"report" json:"report"`
	DebounceMS *int   `toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
	Verbose    *bool  `toml:"verbose" yaml:"verbose" json:"verbose"`
	Color      string `toml:"color" yaml:"color" json:"color"`
	LogFile    string `toml:"log_file" yaml:"log_file" json:"log_file"`
}

// LoadFile reads a TOML, YAML or JSON config file (chosen by extension) and
// applies its keys on top of cfg. Unknown extensions are tried as TOML,
// then JSON, then YAML.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := autoDetectAndParse(data, &fc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return fc.apply(cfg)
}

func autoDetectAndParse(data []byte, fc *fileConfig) error {
	if _, err := toml.Decode(string(data), fc); err == nil {
		return nil
	}
	*fc = fileConfig{}
	if err := json.Unmarshal(data, fc); err == nil {
		return nil
	}
	*fc = fileConfig{}
	if err := yaml.Unmarshal(data, fc); err == nil {
		return nil
	}
	return fmt.Errorf("unrecognized config format")
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Mode != "" {
		m, err := codec.ParseMode(fc.Mode)
		if err != nil {
			return err
		}
		cfg.Mode = m
	}
	if fc.Marker != "" {
		r, err := ParseMarker(fc.Marker)
		if err != nil {
			return err
		}
		cfg.Marker = r
	}
	if fc.Extension != "" {
		cfg.Extension = fc.Extension
	}
	if fc.OutputDir != "" {
		cfg.OutputDir = NormalizeDirArg(fc.OutputDir)
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.DryRun != nil {
		cfg.DryRun = *fc.DryRun
	}
	if fc.Report != "" {
		cfg.ReportPath = fc.Report
	}
	if fc.DebounceMS != nil {
		cfg.DebounceMillis = *fc.DebounceMS
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.Color != "" {
		cm, err := ParseColorMode(fc.Color)
		if err != nil {
			return err
		}
		cfg.ColorMode = cm
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	return nil
}
