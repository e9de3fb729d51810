package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const delim = "."

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"listen":        "listen",
	"metrics":       "metrics",
	"pprof":         "pprof",
	"catalog":       "catalog",
	"tick-rate":     "sim.tick_rate",
	"seed":          "world.seed",
	"extent":        "world.extent",
	"log-sinks":     "log.sinks",
	"log-level":     "log.min_severity",
	"log-json-path": "log.json_path",
}

// LoadOptions selects the layers Load reads.
type LoadOptions struct {
	// Path is an optional YAML file.
	Path string
	// Flags contributes only the flags the user actually set.
	Flags *pflag.FlagSet
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// BindFlags registers the command-line overrides on fs.
func BindFlags(fs *pflag.FlagSet) {
	defaults := Default()
	fs.String("listen", defaults.Listen, "HTTP listen address")
	fs.Bool("metrics", defaults.Metrics, "expose prometheus metrics on /metrics")
	fs.Bool("pprof", defaults.Pprof, "mount net/http/pprof under /debug/pprof")
	fs.String("catalog", defaults.Catalog, "item catalog YAML (embedded catalog when empty)")
	fs.Int("tick-rate", defaults.Sim.TickRate, "simulation ticks per second")
	fs.String("seed", defaults.World.Seed, "arena seed")
	fs.Int("extent", defaults.World.Extent, "arena half extent in cells")
	fs.StringSlice("log-sinks", defaults.Log.Sinks, "structured log sinks (console, json, memory)")
	fs.String("log-level", defaults.Log.MinSeverity, "minimum structured log severity")
	fs.String("log-json-path", defaults.Log.JSONPath, "file for the json sink (stdout when empty)")
}

// Load layers the file, environment and flags over Default and validates
// the result.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		k := koanf.New(delim)
		if err := k.Load(file.Provider(opts.Path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", opts.Path, err)
		}
		if err := decode(k, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", opts.Path, err)
		}
	}

	envOpts := env.Options{Prefix: EnvPrefix, Environment: opts.Environment}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if opts.Flags != nil {
		k := koanf.New(delim)
		provider := posflag.ProviderWithFlag(opts.Flags, delim, k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("load flags: %w", err)
		}
		if err := decode(k, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode flags: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decode merges k into cfg. Lists present in k replace the current ones
// instead of being merged element by element.
func decode(k *koanf.Koanf, cfg *Config) error {
	if k.Exists("world.loadout") {
		cfg.World.Loadout = nil
	}
	if k.Exists("log.sinks") {
		cfg.Log.Sinks = nil
	}
	return k.Unmarshal("", cfg)
}
