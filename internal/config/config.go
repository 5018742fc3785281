// Package config loads pgscaffold CLI settings from a config file,
// environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "PGSCAFFOLD_"

// Defaults
const (
	DefaultFormat   = "text"
	DefaultLogLevel = "warn"
)

// configFileNames are looked up in the working directory when no file is given
var configFileNames = []string{"pgscaffold.yaml", "pgscaffold.yml", "pgscaffold.toml"}

// Config holds all CLI options
type Config struct {
	Connection string   `koanf:"connection" toml:"connection"`
	Schemas    []string `koanf:"schemas" toml:"schemas"`
	Tables     []string `koanf:"tables" toml:"tables"`
	Format     string   `koanf:"format" toml:"format"`
	Output     string   `koanf:"output" toml:"output"`
	OutputDir  string   `koanf:"output_dir" toml:"output_dir"`
	LogLevel   string   `koanf:"log_level" toml:"log_level"`

	// File is the config file that was loaded, if any
	File string `koanf:"-" toml:"-"`
}

// findConfigFile returns the explicit path or the first default file that
// exists in dir
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":    DefaultFormat,
		"log_level": DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cwd, _ := os.Getwd()
	used := findConfigFile(cfgFile, cwd)
	if used != "" {
		if err := loadFile(k, used); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables: PGSCAFFOLD_OUTPUT_DIR -> output_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "config":
				return "", nil
			case "db_url":
				return "connection", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Schemas = splitList(cfg.Schemas)
	cfg.Tables = splitList(cfg.Tables)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFile reads YAML through the koanf parser. TOML is decoded with
// BurntSushi/toml so unknown keys are rejected, then merged as a map.
func loadFile(k *koanf.Koanf, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".toml") {
		return k.Load(file.Provider(path), yaml.Parser())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc Config
	md, err := toml.Decode(string(data), &fc)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, key := range unknown {
			keys[i] = key.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	values := map[string]interface{}{}
	set := func(key string, v interface{}) {
		if md.IsDefined(key) {
			values[key] = v
		}
	}
	set("connection", fc.Connection)
	set("schemas", fc.Schemas)
	set("tables", fc.Tables)
	set("format", fc.Format)
	set("output", fc.Output)
	set("output_dir", fc.OutputDir)
	set("log_level", fc.LogLevel)
	return k.Load(confmap.Provider(values, "."), nil)
}

// splitList accepts both list values and comma-separated strings, as
// environment variables arrive as a single string. Commas inside double
// quotes belong to a quoted identifier and do not split.
func splitList(values []string) []string {
	var out []string
	add := func(part string) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	for _, v := range values {
		quoted := false
		start := 0
		for i, r := range v {
			switch {
			case r == '"':
				quoted = !quoted
			case r == ',' && !quoted:
				add(v[start:i])
				start = i + 1
			}
		}
		add(v[start:])
	}
	return out
}

// Validate checks option combinations
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection is required (--db-url, %sCONNECTION or the config file)", EnvPrefix)
	}
	if c.Output != "" && c.OutputDir != "" {
		return fmt.Errorf("cannot use both output and output_dir")
	}
	switch c.Format {
	case "text", "markdown", "yaml":
	default:
		return fmt.Errorf("invalid format: %s (must be 'text', 'markdown' or 'yaml')", c.Format)
	}
	return nil
}
