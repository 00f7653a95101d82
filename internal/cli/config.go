package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/structiou/pkg/corpus"
	"github.com/matzehuels/structiou/pkg/server"
)

// Config is the optional config file. Flags given on the command line win
// over file values.
//
//	[score]
//	flexible = true
//	threshold = 0.0
//
//	[corpus]
//	workers = 8
//
//	[cache]
//	dir = "/var/cache/structiou"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "720h"
//
//	[server]
//	addr = "127.0.0.1:8080"
type Config struct {
	Score  ScoreConfig  `toml:"score"`
	Corpus CorpusConfig `toml:"corpus"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`

	path      string
	undecoded []string
}

// ScoreConfig holds alignment defaults.
type ScoreConfig struct {
	Flexible  *bool   `toml:"flexible"`
	Threshold float64 `toml:"threshold"`
	Epsilon   float64 `toml:"epsilon"`
}

// CorpusConfig holds corpus runner settings.
type CorpusConfig struct {
	Workers int `toml:"workers"`
}

// CacheConfig selects and tunes the score cache.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      duration `toml:"ttl"`
}

// ServerConfig configures "structiou serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	MaxExamples  int      `toml:"max_examples"`
	Timeout      duration `toml:"timeout"`
}

// duration decodes TOML strings such as "30s" or "720h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// loadConfig reads path, or the default location when path is empty. A
// missing default file yields an empty config; a missing explicit file is
// an error.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := &Config{path: path}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		cfg.undecoded = append(cfg.undecoded, key.String())
	}
	return cfg, nil
}

// corpusOptions layers the config file over the library defaults.
func (cfg *Config) corpusOptions() corpus.Options {
	opts := corpus.DefaultOptions()
	if cfg.Score.Flexible != nil {
		opts.Flexible = *cfg.Score.Flexible
	}
	if cfg.Score.Threshold != 0 {
		opts.Threshold = cfg.Score.Threshold
	}
	if cfg.Score.Epsilon != 0 {
		opts.Epsilon = cfg.Score.Epsilon
	}
	return opts
}

func (cfg *Config) serverConfig() server.Config {
	return server.Config{
		Addr:         cfg.Server.Addr,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		MaxExamples:  cfg.Server.MaxExamples,
		Timeout:      cfg.Server.Timeout.Duration,
	}
}
