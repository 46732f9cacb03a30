package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultProgressEvery = 100
	defaultTickMS        = 120
	configFileName       = ".modsweep.json"
)

type Config struct {
	Include       []string `mapstructure:"include"`
	Exclude       []string `mapstructure:"exclude"`
	Skip          []string `mapstructure:"skip"`
	Depth         int      `mapstructure:"depth"`
	Confirm       bool     `mapstructure:"confirm"`
	Workers       int      `mapstructure:"workers"`
	TickMS        int      `mapstructure:"tick_ms"`
	ProgressEvery int      `mapstructure:"progress_every"`
	SizeMethod    string   `mapstructure:"size_method"`
	LogFile       string   `mapstructure:"log_file"`
	LogLevel      string   `mapstructure:"log_level"`
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("skip", []string{})
	v.SetDefault("depth", 0)
	v.SetDefault("confirm", true)
	v.SetDefault("workers", 0)
	v.SetDefault("tick_ms", defaultTickMS)
	v.SetDefault("progress_every", defaultProgressEvery)
	v.SetDefault("size_method", sizeMethodWalk)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	return v
}

func resolveConfigPath(root, explicit string) (string, bool, error) {
	if explicit != "" {
		if !fileExists(explicit) {
			return "", false, fmt.Errorf("config %s: %w", explicit, os.ErrNotExist)
		}
		return explicit, true, nil
	}
	for _, candidate := range defaultConfigPaths(root) {
		if fileExists(candidate) {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// loadConfig reads path (when non-empty) into v and decodes the merged view
// of defaults, file and any bound flags.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if filepath.Ext(path) == "" {
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return normalizeConfig(cfg)
}

func defaultConfigPaths(root string) []string {
	paths := []string{}
	if root != "" {
		paths = append(paths, filepath.Join(root, configFileName))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "modsweep", "config.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "modsweep", "config.json"))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func mergeSkipDirs(base map[string]struct{}, extra []string) map[string]struct{} {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		base = map[string]struct{}{}
	}
	for _, item := range extra {
		if item == "" {
			continue
		}
		base[item] = struct{}{}
	}
	return base
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.Depth < 0 {
		return Config{}, errors.New("config: depth must be >= 0")
	}
	if cfg.Workers < 0 {
		return Config{}, errors.New("config: workers must be >= 0")
	}
	if cfg.TickMS <= 0 {
		return Config{}, errors.New("config: tick_ms must be > 0")
	}
	if cfg.ProgressEvery <= 0 {
		return Config{}, errors.New("config: progress_every must be > 0")
	}
	cfg.SizeMethod = strings.ToLower(strings.TrimSpace(cfg.SizeMethod))
	switch cfg.SizeMethod {
	case "":
		cfg.SizeMethod = sizeMethodWalk
	case sizeMethodWalk, sizeMethodDu:
	default:
		return Config{}, fmt.Errorf("config: %w: %q", errUnknownSizeMethod, cfg.SizeMethod)
	}
	cfg.Include = parseTargetList(cfg.Include...)
	cfg.Exclude = parseTargetList(cfg.Exclude...)
	cfg.Skip = parseTargetList(cfg.Skip...)
	return cfg, nil
}
