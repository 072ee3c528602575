package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Void-Roleplay/backend/internal/model"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig                      `yaml:"server"`
	Directory DirectoryConfig                   `yaml:"directory"`
	Linking   LinkingConfig                     `yaml:"linking"`
	Platforms map[model.Platform]PlatformConfig `yaml:"platforms"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Port       int    `yaml:"port"`
}

// DirectoryConfig selects and configures the account directory backend
type DirectoryConfig struct {
	Backend  string `yaml:"backend"` // "memory" or "redis"
	RedisURL string `yaml:"redis_url"`
}

// LinkingConfig holds verification lifecycle settings
type LinkingConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// PlatformConfig holds per-platform settings. The two platforms differ:
// TeamSpeak confirmation happens inside an active chat session, Discord
// confirmation is an async DM reaction, so the windows differ too.
type PlatformConfig struct {
	// GatewayURL is the base URL of the bot gateway that owns this
	// platform's wire protocol
	GatewayURL string `yaml:"gateway_url"`

	// VerifyTTL is how long a pending link request stays open
	VerifyTTL time.Duration `yaml:"verify_ttl"`

	// BaselineGroup is the group every principal holds; never touched
	// by reconciliation
	BaselineGroup model.GroupID `yaml:"baseline_group"`

	// UnverifiedGroup is the "not yet linked" sentinel group, empty if the
	// platform has none. Controlled by the link/unlink transition only.
	UnverifiedGroup model.GroupID `yaml:"unverified_group"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no gateways
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Directory.Backend == "" {
		c.Directory.Backend = "memory"
	}
	if c.Linking.SweepInterval == 0 {
		c.Linking.SweepInterval = 30 * time.Second
	}
	if c.Platforms == nil {
		c.Platforms = make(map[model.Platform]PlatformConfig)
	}
	for _, platform := range model.Platforms {
		pc := c.Platforms[platform]
		if pc.VerifyTTL == 0 {
			// Reply-based confirmation is interactive; reaction-based
			// confirmation gets a longer async window
			switch platform {
			case model.PlatformTeamSpeak:
				pc.VerifyTTL = 2 * time.Minute
			case model.PlatformDiscord:
				pc.VerifyTTL = 10 * time.Minute
			}
		}
		c.Platforms[platform] = pc
	}
}
