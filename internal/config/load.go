package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that move the config file.
const (
	EnvConfig    = "NPTOOL_CONFIG"     // file path, below --config
	EnvConfigDir = "NPTOOL_CONFIG_DIR" // replaces the per-user directory
)

// Origin tells where the config file came from.
type Origin string

const (
	OriginDefaults Origin = "defaults"
	OriginFlag     Origin = "flag"
	OriginEnv      Origin = "env"
	OriginSearch   Origin = "search"
)

// fileNames are tried in order inside every search directory.
var fileNames = []string{"nptool.yaml", "nptool.yml"}

// Load loads configuration with priority: defaults < file < flags.
// The file is the one Resolve picks.
func Load() (*Config, error) {
	cfg := Default()

	path, origin := Resolve()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s (%s): %w", path, origin, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// Resolve returns the config file to read: --config, then $NPTOOL_CONFIG,
// then the first match in the working directory and ConfigDir. An empty
// path means defaults only. Explicit paths are returned even if missing so
// that Load reports them.
func Resolve() (string, Origin) {
	if p := ConfigPath(); p != "" {
		return p, OriginFlag
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p, OriginEnv
	}
	if p := searchConfig(".", ConfigDir()); p != "" {
		return p, OriginSearch
	}
	return "", OriginDefaults
}

// searchConfig returns the first regular file named after fileNames in dirs.
func searchConfig(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range fileNames {
			p := filepath.Join(dir, name)
			if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
				return p
			}
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory, or $NPTOOL_CONFIG_DIR
// made absolute when set.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "normalpainter")
}

// loadFromFile merges the YAML file at path into cfg. Unknown keys are
// rejected and an empty file changes nothing.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
