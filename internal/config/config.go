// Package config resolves the app settings from flags, ACADEMIA_* environment variables and an
// optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "ACADEMIA"
	configBaseName = "config"
	defaultDirName = ".academia"
	defaultLogName = "academia.log"

	DefaultFPS = 60
	MaxFPS     = 240
)

// Keys shared by flags, env and the config file
const (
	KeyUser     = "user"
	KeyDataDir  = "data-dir"
	KeyPlans    = "plans"
	KeyLogFile  = "log-file"
	KeyLogLevel = "log-level"
	KeyFPS      = "fps"
	KeyMute     = "mute"
	KeyConfig   = "config"
)

var ErrInvalidFPS = errors.New("fps out of range")

type Config struct {
	User       string
	DataDir    string
	PlansFile  string // extra YAML plan catalog merged over the built-in one
	LogFile    string
	LogLevel   string
	FPS        int
	Muted      bool
	ConfigFile string // file actually read, empty when none
}

// FrameInterval is the set clock tick derived from FPS
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// DefaultDataDir is ~/.academia, or ./.academia when the home dir is unknown
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, defaultDirName)
}

// NewFlagSet declares every setting as a flag
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP(KeyUser, "u", "", "user whose plans are shown (e.g. rafael, julyana)")
	flags.String(KeyDataDir, DefaultDataDir(), "directory for history, preferences and logs")
	flags.String(KeyPlans, "", "YAML file with extra workout plans")
	flags.String(KeyLogFile, "", "log file (default <data-dir>/"+defaultLogName+")")
	flags.String(KeyLogLevel, "info", "log level: trace, debug, info, warn, error")
	flags.Int(KeyFPS, DefaultFPS, "set clock refresh rate")
	flags.Bool(KeyMute, false, "start with audio muted")
	flags.StringP(KeyConfig, "c", "", "config file (default <data-dir>/config.yaml)")
	return flags
}

// Load parses args into flags and resolves the final configuration
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyDataDir, DefaultDataDir())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyFPS, DefaultFPS)
	v.SetDefault(KeyMute, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		User:       strings.TrimSpace(strings.ToLower(v.GetString(KeyUser))),
		DataDir:    expandHome(v.GetString(KeyDataDir)),
		PlansFile:  expandHome(v.GetString(KeyPlans)),
		LogFile:    expandHome(v.GetString(KeyLogFile)),
		LogLevel:   v.GetString(KeyLogLevel),
		FPS:        v.GetInt(KeyFPS),
		Muted:      v.GetBool(KeyMute),
		ConfigFile: v.ConfigFileUsed(),
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, defaultLogName)
	}
	if cfg.FPS <= 0 || cfg.FPS > MaxFPS {
		return nil, fmt.Errorf("%w: %d (1..%d)", ErrInvalidFPS, cfg.FPS, MaxFPS)
	}
	return cfg, nil
}

// readConfigFile reads an explicit --config file, or <data-dir>/config.yaml when it exists
func readConfigFile(v *viper.Viper) error {
	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(expandHome(path))
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(expandHome(v.GetString(KeyDataDir)))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
