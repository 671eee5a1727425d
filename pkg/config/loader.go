package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config represents the complete configuration file structure for stringer.
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
}

// ScanConfig contains detector and dispatcher settings.
type ScanConfig struct {
	MinLen      int      `mapstructure:"min_len"`
	Encodings   []string `mapstructure:"encodings"`
	Threads     string   `mapstructure:"threads"`
	NullOnly    bool     `mapstructure:"null_only"`
	CapRunBytes int      `mapstructure:"cap_run_bytes"`
	TileSize    string   `mapstructure:"tile_size"`
}

// OutputConfig contains record output settings.
type OutputConfig struct {
	JSON bool   `mapstructure:"json"`
	File string `mapstructure:"file"`
}

var (
	globalViper  *viper.Viper
	globalConfig *Config
)

// LoadConfig reads the configuration file (explicit path or standard
// locations) and caches the result for the helper getters. Setting
// STRINGER_NO_CONFIG=1 skips file loading entirely, which keeps e2e tests
// deterministic regardless of the host's config files.
func LoadConfig(configFile string) (*Config, error) {
	if os.Getenv("STRINGER_NO_CONFIG") == "1" {
		globalConfig = &Config{}
		return globalConfig, nil
	}

	if err := InitializeViper(configFile); err != nil {
		return nil, err
	}

	cfg, err := UnmarshalConfig()
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// InitializeViper initializes the global Viper instance with config file and defaults.
// This should be called once during application initialization.
func InitializeViper(configFile string) error {
	v := viper.New()

	setDefaults(v)

	// If a config file is explicitly specified, use it
	if configFile != "" {
		v.SetConfigFile(configFile)
		log.Debug().Str("path", configFile).Msg("Using specified config file")
	} else {
		// Look for config in standard locations
		v.SetConfigName("stringer")
		v.SetConfigType("yaml")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "stringer"))
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")

		log.Debug().Msg("Searching for config file in standard locations")
	}

	// Read config file (if it exists)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Debug().Msg("No config file found, using defaults and command-line flags")
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
	}

	// Read from environment variables with STRINGER_ prefix
	v.SetEnvPrefix("STRINGER")
	v.AutomaticEnv()

	globalViper = v
	return nil
}

// GetViper returns the global Viper instance.
func GetViper() *viper.Viper {
	if globalViper == nil {
		if err := InitializeViper(""); err != nil {
			log.Fatal().Err(err).Msg("Failed to auto-initialize Viper configuration")
		}
	}
	return globalViper
}

// UnmarshalConfig unmarshals the configuration into a Config struct.
func UnmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := GetViper().Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return config, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.min_len", DefaultMinLen)
	v.SetDefault("scan.encodings", []string{"ascii", "utf16le"})
	v.SetDefault("scan.threads", "1")
	v.SetDefault("scan.null_only", false)
	v.SetDefault("scan.cap_run_bytes", DefaultCapRunBytes)
	v.SetDefault("scan.tile_size", "auto")

	v.SetDefault("output.json", false)
	v.SetDefault("output.file", "")
}
