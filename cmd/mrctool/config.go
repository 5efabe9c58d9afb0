package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the optional config file (~/.config/mrctool/config.yaml).
// File values apply only when the corresponding flag was not set.
type Config struct {
	DataDir       string `yaml:"data_dir"`
	ServerAddress string `yaml:"server_address"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mrctool", "config.yaml")
}

// LoadConfig reads the config file, returning a zero Config when absent.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

func applyConfig(c *cli.Command, cfg Config, dataDir, addr *string) {
	if cfg.DataDir != "" && dataDir != nil && !c.IsSet("data-dir") {
		*dataDir = cfg.DataDir
	}
	if cfg.ServerAddress != "" && addr != nil && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
