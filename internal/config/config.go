// Package config resolves the server's environment-driven configuration.
// It generalizes the teacher's reinforcement.FromYaml, which builds
// a viper.New() instance and reads defaults explicitly rather than relying
// on zero values.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every environment-tunable knob.
type Config struct {
	WebsocketHost string  `mapstructure:"websocket_host" yaml:"websocket_host"`
	WebsocketPort int     `mapstructure:"websocket_port" yaml:"websocket_port"`
	WorldBoundsX  float64 `mapstructure:"world_bounds_x" yaml:"world_bounds_x"`
	WorldBoundsY  float64 `mapstructure:"world_bounds_y" yaml:"world_bounds_y"`
	PlayerSpeed   float64 `mapstructure:"player_speed" yaml:"player_speed"`
	LogLevel      string  `mapstructure:"log_level" yaml:"log_level"`
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.WebsocketHost, c.WebsocketPort)
}

// layerConfigFile optionally layers values from an on-disk YAML file
// beneath the environment, the same two-stage viper+yaml.v3 split as the
// teacher's reinforcement.FromYaml (viper owns the runtime config object,
// yaml.v3 does the typed decode). The file is optional: if it doesn't
// exist, the compiled-in defaults stand. Values it does set go in as
// viper defaults, so an environment variable still takes precedence.
func layerConfigFile(vp *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if file.WebsocketHost != "" {
		vp.SetDefault("websocket_host", file.WebsocketHost)
	}
	if file.WebsocketPort != 0 {
		vp.SetDefault("websocket_port", file.WebsocketPort)
	}
	if file.WorldBoundsX != 0 {
		vp.SetDefault("world_bounds_x", file.WorldBoundsX)
	}
	if file.WorldBoundsY != 0 {
		vp.SetDefault("world_bounds_y", file.WorldBoundsY)
	}
	if file.PlayerSpeed != 0 {
		vp.SetDefault("player_speed", file.PlayerSpeed)
	}
	if file.LogLevel != "" {
		vp.SetDefault("log_level", file.LogLevel)
	}
	return nil
}

// Load reads configuration from an optional config.yaml, then the process
// environment, which always wins over the file.
func Load() (*Config, error) {
	vp := viper.New()
	vp.SetEnvPrefix("")
	vp.AutomaticEnv()

	vp.SetDefault("websocket_host", "0.0.0.0")
	vp.SetDefault("websocket_port", 5000)
	vp.SetDefault("world_bounds_x", 1000.0)
	vp.SetDefault("world_bounds_y", 1000.0)
	vp.SetDefault("player_speed", 100.0)
	vp.SetDefault("log_level", "info")

	if err := layerConfigFile(vp, "config.yaml"); err != nil {
		return nil, err
	}

	bind := func(env, key string) error {
		return vp.BindEnv(key, env)
	}
	if err := bind("WEBSOCKET_HOST", "websocket_host"); err != nil {
		return nil, err
	}
	if err := bind("WEBSOCKET_PORT", "websocket_port"); err != nil {
		return nil, err
	}
	if err := bind("WORLD_BOUNDS_X", "world_bounds_x"); err != nil {
		return nil, err
	}
	if err := bind("WORLD_BOUNDS_Y", "world_bounds_y"); err != nil {
		return nil, err
	}
	if err := bind("PLAYER_SPEED", "player_speed"); err != nil {
		return nil, err
	}
	if err := bind("LOG_LEVEL", "log_level"); err != nil {
		return nil, err
	}

	cfg := &Config{
		WebsocketHost: vp.GetString("websocket_host"),
		WebsocketPort: vp.GetInt("websocket_port"),
		WorldBoundsX:  vp.GetFloat64("world_bounds_x"),
		WorldBoundsY:  vp.GetFloat64("world_bounds_y"),
		PlayerSpeed:   vp.GetFloat64("player_speed"),
		LogLevel:      vp.GetString("log_level"),
	}

	if cfg.WorldBoundsX <= 0 || cfg.WorldBoundsY <= 0 {
		return nil, fmt.Errorf("config: world bounds must be positive, got (%v, %v)", cfg.WorldBoundsX, cfg.WorldBoundsY)
	}
	if cfg.PlayerSpeed <= 0 {
		return nil, fmt.Errorf("config: player speed must be positive, got %v", cfg.PlayerSpeed)
	}

	return cfg, nil
}
