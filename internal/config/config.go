package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddress = ":8077"
	defaultRefreshSecs   = 5.0
	defaultCPUSampleSecs = 1.0
	defaultTopProcesses  = 20
	defaultExportPath    = "system_data.json"
)

type Config struct {
	ListenAddress string `yaml:"listen_address"`
	// RefreshInterval is the auto-refresh period in seconds.
	RefreshInterval float64 `yaml:"refresh_interval"`
	// CPUSample is the blocking CPU usage sampling window in seconds. Every
	// collection cycle stalls for this long while the rate is computed.
	CPUSample    float64 `yaml:"cpu_sample"`
	TopProcesses int     `yaml:"top_processes"`
	ExportPath   string  `yaml:"export_path"`
}

// Load reads the config file at path. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshSecs
	}
	if cfg.CPUSample <= 0 {
		cfg.CPUSample = defaultCPUSampleSecs
	}
	if cfg.TopProcesses <= 0 {
		cfg.TopProcesses = defaultTopProcesses
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = defaultExportPath
	}

	return cfg, nil
}

func Default() *Config {
	return &Config{
		ListenAddress:   defaultListenAddress,
		RefreshInterval: defaultRefreshSecs,
		CPUSample:       defaultCPUSampleSecs,
		TopProcesses:    defaultTopProcesses,
		ExportPath:      defaultExportPath,
	}
}

func (c *Config) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshInterval * float64(time.Second))
}

func (c *Config) CPUSampleDuration() time.Duration {
	return time.Duration(c.CPUSample * float64(time.Second))
}
