// Package config provides YAML-based configuration for the game, the
// terminal host and the ranking server.
package config

import (
	"fmt"

	"github.com/vovakirdan/tilejump/internal/camera"
	"github.com/vovakirdan/tilejump/internal/game"
	"github.com/vovakirdan/tilejump/internal/level"
	"github.com/vovakirdan/tilejump/internal/physics"
)

// Config is the complete tilejump configuration.
type Config struct {
	Loop   game.LoopConfig    `yaml:"loop"`
	Map    MapConfig          `yaml:"map"`
	Player PlayerConfig       `yaml:"player"`
	Modes  [3]physics.Profile `yaml:"modes"`
	Camera CameraConfig       `yaml:"camera"`
	Server ServerConfig       `yaml:"server"`
	Client ClientConfig       `yaml:"client"`
}

// MapConfig sets the dimensions of new maps.
type MapConfig struct {
	Width              int     `yaml:"width"`
	Height             int     `yaml:"height"`
	TileWidth          int     `yaml:"tile_width"`
	TileHeight         int     `yaml:"tile_height"`
	Gravity            float64 `yaml:"gravity"`
	AllowCustomGravity bool    `yaml:"allow_custom_gravity"`
}

// PlayerConfig holds the body size and the movement constants shared by
// every physics mode.
type PlayerConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Acceleration    float64 `yaml:"acceleration"`
	Friction        float64 `yaml:"friction"`
	GroundFriction  float64 `yaml:"ground_friction"`
	AirFriction     float64 `yaml:"air_friction"`
	AirAcceleration float64 `yaml:"air_acceleration"`
	MaxVY           float64 `yaml:"max_vy"`
	AnimationDelay  int     `yaml:"animation_delay"`
}

// CameraConfig selects the viewport.
type CameraConfig struct {
	Perspective string `yaml:"perspective"` // default, middle or close
}

// ServerConfig configures `tilejump serve`.
type ServerConfig struct {
	HTTPAddr     string        `yaml:"http_addr"`
	SSH          SSHConfig     `yaml:"ssh"`
	Storage      StorageConfig `yaml:"storage"`
	RankingLimit int           `yaml:"ranking_limit"`
	MapsDir      string        `yaml:"maps_dir"` // served to SSH players
}

// SSHConfig configures the remote play host.
type SSHConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	HostKeyPath string `yaml:"host_key_path"`
}

// StorageConfig selects the ranking database.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

// ClientConfig is where `tilejump play --server` connects.
type ClientConfig struct {
	Server string `yaml:"server"`
	User   string `yaml:"user"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	t := physics.DefaultTuning()
	lc := level.DefaultConfig()
	return Config{
		Loop: game.DefaultLoopConfig(),
		Map: MapConfig{
			Width:      lc.Width,
			Height:     lc.Height,
			TileWidth:  lc.TileWidth,
			TileHeight: lc.TileHeight,
			Gravity:    lc.Gravity,
		},
		Player: PlayerConfig{
			Width:           t.Width,
			Height:          t.Height,
			Acceleration:    t.Acceleration,
			Friction:        t.Friction,
			GroundFriction:  t.GroundFriction,
			AirFriction:     t.AirFriction,
			AirAcceleration: t.AirAcceleration,
			MaxVY:           t.MaxVY,
			AnimationDelay:  t.AnimationDelay,
		},
		Modes:  t.Modes,
		Camera: CameraConfig{Perspective: camera.PerspectiveDefault.Name},
		Server: ServerConfig{
			HTTPAddr: ":8080",
			SSH: SSHConfig{
				Addr:        ":23234",
				HostKeyPath: "~/.tilejump/ssh_host_key",
			},
			Storage: StorageConfig{
				Driver: "sqlite",
				DSN:    "~/.tilejump/tilejump.db",
			},
			RankingLimit: 10,
			MapsDir:      "maps",
		},
		Client: ClientConfig{Server: "http://localhost:8080"},
	}
}

// Tuning assembles the player movement tuning.
func (c Config) Tuning() physics.Tuning {
	return physics.Tuning{
		Width:           c.Player.Width,
		Height:          c.Player.Height,
		Acceleration:    c.Player.Acceleration,
		Friction:        c.Player.Friction,
		GroundFriction:  c.Player.GroundFriction,
		AirFriction:     c.Player.AirFriction,
		AirAcceleration: c.Player.AirAcceleration,
		MaxVY:           c.Player.MaxVY,
		AnimationDelay:  c.Player.AnimationDelay,
		Modes:           c.Modes,
	}
}

// Level returns the configuration of new maps.
func (c Config) Level() level.Config {
	return level.Config{
		Width:              c.Map.Width,
		Height:             c.Map.Height,
		TileWidth:          c.Map.TileWidth,
		TileHeight:         c.Map.TileHeight,
		Gravity:            c.Map.Gravity,
		AllowCustomGravity: c.Map.AllowCustomGravity,
	}
}

// Validate rejects configurations the game cannot run with.
func (c Config) Validate() error {
	if c.Loop.FPS <= 0 {
		return fmt.Errorf("config: loop.fps must be positive, got %d", c.Loop.FPS)
	}
	if err := c.Tuning().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := camera.PerspectiveByName(c.Camera.Perspective); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ApplyPerspective resizes cam to the named perspective.
func ApplyPerspective(cam *camera.Camera, name string) error {
	p, err := camera.PerspectiveByName(name)
	if err != nil {
		return err
	}
	cam.SetPerspective(p)
	return nil
}
