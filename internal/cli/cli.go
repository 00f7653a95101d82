package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/buildinfo"
	"github.com/matzehuels/structiou/pkg/cache"
	"github.com/matzehuels/structiou/pkg/corpus"
	"github.com/matzehuels/structiou/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "structiou"

	// defaultRedisPrefix namespaces keys in a shared Redis.
	defaultRedisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    &Config{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches to debug logging and reports scoring and cache
// events through the logger.
func (c *CLI) SetVerbose(verbose bool) {
	if !verbose {
		c.SetLogLevel(LogInfo)
		return
	}
	c.SetLogLevel(LogDebug)
	hooks := newLogHooks(c.Logger)
	observability.SetScoringHooks(hooks)
	observability.SetCacheHooks(hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Struct-IoU scores predicted constituency trees against references",
		Long: `structiou compares two constituency trees whose leaves carry time or position
boundaries. It finds the best order-preserving alignment of their constituents
and reports the Struct-IoU score in [0, 1].`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			for _, key := range cfg.undecoded {
				c.Logger.Warn("unknown config key", "key", key)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/structiou/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the score cache")

	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.evalCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a corpus runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*corpus.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	r := corpus.NewRunner(cc, nil, c.Logger)
	if c.cfg.Corpus.Workers > 0 {
		r.Workers = c.cfg.Corpus.Workers
	}
	if c.cfg.Cache.TTL.Duration > 0 {
		r.TTL = c.cfg.Cache.TTL.Duration
	}
	return r, nil
}

// newCache picks the backend: disabled, Redis when configured, otherwise
// the file cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.redisURL(); url != "" {
		prefix := c.cfg.Cache.Prefix
		if prefix == "" {
			prefix = defaultRedisPrefix
		}
		rc, err := cache.NewRedisCache(ctx, url, prefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) redisURL() string {
	if url := os.Getenv("STRUCTIOU_REDIS_URL"); url != "" {
		return url
	}
	return c.cfg.Cache.RedisURL
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/structiou/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns ~/.config/structiou/ or its XDG override.
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
