// Package config assembles server settings from defaults, an optional YAML
// file, VOXELFRONT_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/sim"
	"voxelfront/server/internal/world"
	"voxelfront/server/logging"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "VOXELFRONT_"

// Config is the full server configuration.
type Config struct {
	Listen  string `koanf:"listen" env:"LISTEN"`
	Metrics bool   `koanf:"metrics" env:"METRICS"`
	// Pprof mounts net/http/pprof under /debug/pprof.
	Pprof bool `koanf:"pprof" env:"PPROF"`
	// Catalog points at a YAML item catalog; empty uses the embedded one.
	Catalog string `koanf:"catalog" env:"CATALOG"`

	Sim   SimConfig   `koanf:"sim" envPrefix:"SIM_"`
	World WorldConfig `koanf:"world" envPrefix:"WORLD_"`
	Net   NetConfig   `koanf:"net" envPrefix:"NET_"`
	Log   LogConfig   `koanf:"log" envPrefix:"LOG_"`
}

type SimConfig struct {
	TickRate        int `koanf:"tick_rate" env:"TICK_RATE"`
	CatchupMaxTicks int `koanf:"catchup_max_ticks" env:"CATCHUP_MAX_TICKS"`
	CommandCapacity int `koanf:"command_capacity" env:"COMMAND_CAPACITY"`
	PerActorLimit   int `koanf:"per_actor_limit" env:"PER_ACTOR_LIMIT"`
}

type WorldConfig struct {
	Seed          string   `koanf:"seed" env:"SEED"`
	Extent        int      `koanf:"extent" env:"EXTENT"`
	Pillars       int      `koanf:"pillars" env:"PILLARS"`
	InventorySize int      `koanf:"inventory_size" env:"INVENTORY_SIZE"`
	MaxHealth     float64  `koanf:"max_health" env:"MAX_HEALTH"`
	StartArmor    float64  `koanf:"start_armor" env:"START_ARMOR"`
	Loadout       []string `koanf:"loadout" env:"LOADOUT" envSeparator:","`
}

type NetConfig struct {
	SendBuffer      int           `koanf:"send_buffer" env:"SEND_BUFFER"`
	WriteTimeout    time.Duration `koanf:"write_timeout" env:"WRITE_TIMEOUT"`
	MaxMessageBytes int64         `koanf:"max_message_bytes" env:"MAX_MESSAGE_BYTES"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type LogConfig struct {
	Sinks       []string `koanf:"sinks" env:"SINKS" envSeparator:","`
	MinSeverity string   `koanf:"min_severity" env:"MIN_SEVERITY"`
	JSONPath    string   `koanf:"json_path" env:"JSON_PATH"`
	BufferSize  int      `koanf:"buffer_size" env:"BUFFER_SIZE"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	worldDefaults := world.DefaultConfig()
	logDefaults := logging.DefaultConfig()
	return Config{
		Listen:  ":8080",
		Metrics: true,
		Sim: SimConfig{
			TickRate:        30,
			CatchupMaxTicks: 3,
			CommandCapacity: 1024,
			PerActorLimit:   32,
		},
		World: WorldConfig{
			Seed:          worldDefaults.Seed,
			Extent:        worldDefaults.Extent,
			Pillars:       worldDefaults.Pillars,
			InventorySize: worldDefaults.InventorySize,
			MaxHealth:     worldDefaults.MaxHealth,
			Loadout:       slices.Clone(worldDefaults.Loadout),
		},
		Net: NetConfig{
			SendBuffer:      64,
			WriteTimeout:    5 * time.Second,
			MaxMessageBytes: 4096,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Sinks:       slices.Clone(logDefaults.EnabledSinks),
			MinSeverity: logDefaults.MinimumSeverity.String(),
			BufferSize:  logDefaults.BufferSize,
		},
	}
}

var knownSinks = map[string]bool{"console": true, "json": true, "memory": true}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.Sim.TickRate < 1 || c.Sim.TickRate > 240 {
		errs = append(errs, fmt.Errorf("sim.tick_rate %d outside [1, 240]", c.Sim.TickRate))
	}
	if c.Sim.CatchupMaxTicks < 0 {
		errs = append(errs, fmt.Errorf("sim.catchup_max_ticks %d is negative", c.Sim.CatchupMaxTicks))
	}
	if c.Sim.CommandCapacity <= 0 {
		errs = append(errs, fmt.Errorf("sim.command_capacity %d must be positive", c.Sim.CommandCapacity))
	}
	if c.Sim.PerActorLimit < 0 {
		errs = append(errs, fmt.Errorf("sim.per_actor_limit %d is negative", c.Sim.PerActorLimit))
	}
	if c.World.Extent <= 0 {
		errs = append(errs, fmt.Errorf("world.extent %d must be positive", c.World.Extent))
	}
	if c.World.Pillars < 0 {
		errs = append(errs, fmt.Errorf("world.pillars %d is negative", c.World.Pillars))
	}
	if c.World.InventorySize < 2 {
		errs = append(errs, fmt.Errorf("world.inventory_size %d leaves no room beside the tool slot", c.World.InventorySize))
	}
	if c.World.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("world.max_health %g must be positive", c.World.MaxHealth))
	}
	if c.World.StartArmor < 0 {
		errs = append(errs, fmt.Errorf("world.start_armor %g is negative", c.World.StartArmor))
	}
	if c.Net.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("net.max_message_bytes %d must be positive", c.Net.MaxMessageBytes))
	}
	if c.Net.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("net.shutdown_timeout %s must be positive", c.Net.ShutdownTimeout))
	}
	if len(c.Log.Sinks) == 0 {
		errs = append(errs, errors.New("log.sinks is empty"))
	}
	for _, sink := range c.Log.Sinks {
		if !knownSinks[sink] {
			errs = append(errs, fmt.Errorf("log.sinks: unknown sink %q", sink))
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.MinSeverity)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.min_severity %q is not a severity", c.Log.MinSeverity))
	}
	return errors.Join(errs...)
}

// LoopConfig maps the simulation settings onto the loop.
func (c Config) LoopConfig() sim.LoopConfig {
	return sim.LoopConfig{
		TickRate:        c.Sim.TickRate,
		CatchupMaxTicks: c.Sim.CatchupMaxTicks,
		CommandCapacity: c.Sim.CommandCapacity,
		PerActorLimit:   c.Sim.PerActorLimit,
	}
}

// WorldConfig maps the arena settings onto the world, keeping world
// defaults for everything not exposed here.
func (c Config) WorldConfig() world.Config {
	cfg := world.DefaultConfig()
	cfg.Seed = c.World.Seed
	cfg.Extent = c.World.Extent
	cfg.Pillars = c.World.Pillars
	cfg.InventorySize = c.World.InventorySize
	cfg.MaxHealth = c.World.MaxHealth
	cfg.StartArmor = c.World.StartArmor
	if c.World.Loadout != nil {
		cfg.Loadout = slices.Clone(c.World.Loadout)
	}
	return cfg
}

func (c Config) HubConfig() notify.HubConfig {
	return notify.HubConfig{SendBuffer: c.Net.SendBuffer, WriteTimeout: c.Net.WriteTimeout}
}

// LoggingConfig maps the log settings onto the event router.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = slices.Clone(c.Log.Sinks)
	cfg.MinimumSeverity = logging.ParseSeverity(c.Log.MinSeverity)
	cfg.JSON.FilePath = c.Log.JSONPath
	if c.Log.BufferSize > 0 {
		cfg.BufferSize = c.Log.BufferSize
	}
	return cfg
}
