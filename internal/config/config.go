package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ModeLocal = "local"
	ModeHost  = "host"
	ModeJoin  = "join"

	configName = "tankarena"
	envPrefix  = "TANKARENA"
)

// CanvasConfig holds the playfield size in pixels.
type CanvasConfig struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// Config is the resolved client configuration.
type Config struct {
	Mode        string       `json:"mode" mapstructure:"mode"`
	Name        string       `json:"name" mapstructure:"name"`
	GuestName   string       `json:"guestName" mapstructure:"guestName"`
	Listen      string       `json:"listen" mapstructure:"listen"`
	Advertise   string       `json:"advertise" mapstructure:"advertise"`
	Peer        string       `json:"peer" mapstructure:"peer"`
	Canvas      CanvasConfig `json:"canvas" mapstructure:"canvas"`
	TankSize    float64      `json:"tankSize" mapstructure:"tankSize"`
	SpawnBuffer float64      `json:"spawnBuffer" mapstructure:"spawnBuffer"`
	LogLevel    string       `json:"logLevel" mapstructure:"logLevel"`
	LogFormat   string       `json:"logFormat" mapstructure:"logFormat"`
	Seed        int64        `json:"seed" mapstructure:"seed"`
	CopyAddress bool         `json:"copyAddress" mapstructure:"copyAddress"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"mode":         "mode",
	"name":         "name",
	"guest-name":   "guestName",
	"listen":       "listen",
	"advertise":    "advertise",
	"peer":         "peer",
	"width":        "canvas.width",
	"height":       "canvas.height",
	"tank-size":    "tankSize",
	"spawn-buffer": "spawnBuffer",
	"log-level":    "logLevel",
	"log-format":   "logFormat",
	"seed":         "seed",
	"copy-address": "copyAddress",
}

// RegisterFlags defines the command-line flags Load understands.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("mode", ModeLocal, "local (hot seat), host or join")
	fs.String("name", "Player 1", "your display name")
	fs.String("guest-name", "Player 2", "second seat name in local mode")
	fs.String("listen", ":7777", "address the host listens on")
	fs.String("advertise", "127.0.0.1", "host name put in the join URL")
	fs.String("peer", "", "host URL to join, e.g. ws://10.0.0.5:7777/peer")
	fs.Float64("width", 800, "canvas width")
	fs.Float64("height", 600, "canvas height")
	fs.Float64("tank-size", 50, "tank hull size")
	fs.Float64("spawn-buffer", 50, "minimum gap between spawned tanks")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.String("log-format", "console", "console or json")
	fs.Int64("seed", 0, "arena seed, 0 for time based")
	fs.Bool("copy-address", true, "copy the join URL to the clipboard when hosting")
}

func setDefaults() {
	viper.SetDefault("mode", ModeLocal)
	viper.SetDefault("name", "Player 1")
	viper.SetDefault("guestName", "Player 2")
	viper.SetDefault("listen", ":7777")
	viper.SetDefault("advertise", "127.0.0.1")
	viper.SetDefault("peer", "")
	viper.SetDefault("canvas.width", 800.0)
	viper.SetDefault("canvas.height", 600.0)
	viper.SetDefault("tankSize", 50.0)
	viper.SetDefault("spawnBuffer", 50.0)
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "console")
	viper.SetDefault("seed", 0)
	viper.SetDefault("copyAddress", true)
}

// Load resolves configuration from defaults, an optional tankarena.yaml in
// configDir, TANKARENA_* environment variables and fs, in increasing order
// of precedence. fs may be nil.
func Load(configDir string, fs *pflag.FlagSet) (Config, error) {
	setDefaults()

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			f := fs.Lookup(flag)
			if f == nil {
				continue
			}
			if err := viper.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeHost:
	case ModeJoin:
		if c.Peer == "" {
			return errors.New("join mode needs a peer URL")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas %vx%v must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.TankSize <= 0 {
		return fmt.Errorf("tank size %v must be positive", c.TankSize)
	}
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	return nil
}
