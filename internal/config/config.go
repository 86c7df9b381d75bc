package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"chroma/internal/logger"
)

const (
	DefaultBridgeAddr   = "127.0.0.1:1430"
	DefaultOrigin       = "http://localhost:1420"
	DefaultWindowWidth  = 1200
	DefaultWindowHeight = 800

	envLogLevel      = "CHROMA_LOG_LEVEL"
	envJSONLogs      = "CHROMA_JSON_LOGS"
	envBridgeEnabled = "CHROMA_BRIDGE_ENABLED"
	envBridgeAddr    = "CHROMA_BRIDGE_ADDR"
	envBridgeOrigins = "CHROMA_BRIDGE_ORIGINS"
	envBridgeToken   = "CHROMA_BRIDGE_TOKEN"
	envFSScope       = "CHROMA_FS_SCOPE"
)

type Config struct {
	LogLevel string       `toml:"log_level"`
	JSONLogs bool         `toml:"json_logs"`
	Bridge   BridgeConfig `toml:"bridge"`
	Window   WindowConfig `toml:"window"`
	FS       FSConfig     `toml:"fs"`
}

// BridgeConfig controls the front-end bridge. Origins lists the browser
// origins allowed to call it. An empty Token disables the token header.
type BridgeConfig struct {
	Enabled bool     `toml:"enabled"`
	Addr    string   `toml:"addr"`
	Origins []string `toml:"origins"`
	Token   string   `toml:"token"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// FSConfig lists the directories the fs plugin may touch.
type FSConfig struct {
	Scope []string `toml:"scope"`
}

func Default() Config {
	cfg := Config{
		LogLevel: "info",
		Bridge: BridgeConfig{
			Enabled: true,
			Addr:    DefaultBridgeAddr,
			Origins: []string{DefaultOrigin},
		},
		Window: WindowConfig{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
		},
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.FS.Scope = []string{home}
	}
	return cfg
}

// Load builds a Config from defaults, an optional TOML file and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv(envJSONLogs); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", envJSONLogs, v, err)
		}
		cfg.JSONLogs = b
	}

	if v := os.Getenv(envBridgeEnabled); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", envBridgeEnabled, v, err)
		}
		cfg.Bridge.Enabled = b
	}

	if v := os.Getenv(envBridgeAddr); v != "" {
		cfg.Bridge.Addr = v
	}

	if v := os.Getenv(envBridgeOrigins); v != "" {
		cfg.Bridge.Origins = splitList(v)
	}

	if v := os.Getenv(envBridgeToken); v != "" {
		cfg.Bridge.Token = v
	}

	if v := os.Getenv(envFSScope); v != "" {
		cfg.FS.Scope = filepath.SplitList(v)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Bridge.Enabled {
		if _, _, err := net.SplitHostPort(c.Bridge.Addr); err != nil {
			return fmt.Errorf("bridge.addr %q: %w", c.Bridge.Addr, err)
		}
		for _, origin := range c.Bridge.Origins {
			if err := validateOrigin(origin); err != nil {
				return fmt.Errorf("bridge.origins: %w", err)
			}
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %gx%g must be positive", c.Window.Width, c.Window.Height)
	}
	return nil
}

// validateOrigin accepts scheme://host[:port] with nothing after it.
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin %q must be scheme://host[:port]", origin)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
