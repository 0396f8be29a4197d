// Package config provides configuration management for adiv5probe.
// It reads settings from adiv5probe.ini using multiple search paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds all configuration settings for adiv5probe.
type Config struct {
	// Probe transport settings
	Port     string
	DataRate int
	Timeout  int

	// Session defaults
	ChunkSize int
	LabelFile string
	Address   string

	// Default EFM32 target family, used to pre-select a DI dispatch hint
	// for offline table lookups (efm_info without a live probe attached).
	Target string
}

// Load reads configuration from adiv5probe.ini in the following search
// order:
//  1. Current directory (./adiv5probe.ini)
//  2. $ADIV5PROBE_HOME directory
//  3. Home directory (~/adiv5probe.ini)
func Load() (*Config, error) {
	var searchPaths []string

	searchPaths = append(searchPaths, filepath.Join(".", "adiv5probe.ini"))

	if dir := os.Getenv("ADIV5PROBE_HOME"); dir != "" {
		searchPaths = append(searchPaths, filepath.Join(dir, "adiv5probe.ini"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, "adiv5probe.ini"))
	}

	var iniFile *ini.File
	var err error

	for _, path := range searchPaths {
		if _, statErr := os.Stat(path); statErr == nil {
			iniFile, err = ini.Load(path)
			if err == nil {
				break
			}
		}
	}

	if iniFile == nil {
		// No config file is not fatal: the CLI can still run against
		// flags alone, so fall back to defaults rather than an error.
		iniFile = ini.Empty()
	}

	section := iniFile.Section("DEFAULT")

	cfg := &Config{
		Port:      section.Key("port").MustString(""),
		DataRate:  section.Key("data_rate").MustInt(115200),
		Timeout:   section.Key("timeout").MustInt(60),
		ChunkSize: section.Key("chunk_size").MustInt(4096),
		LabelFile: section.Key("labels").MustString(""),
		Address:   section.Key("address").MustString("0"),
		Target:    section.Key("target").MustString(""),
	}

	return cfg, nil
}

// ConfigPath returns the path to the config file that would be loaded.
func ConfigPath() (string, error) {
	paths := []string{filepath.Join(".", "adiv5probe.ini")}

	if dir := os.Getenv("ADIV5PROBE_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "adiv5probe.ini"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "adiv5probe.ini"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no adiv5probe.ini file found")
}

// NormalizeTarget lower-cases a target family name for table lookups.
func NormalizeTarget(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
