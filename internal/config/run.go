package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RunConfigName is the base name of the CLI config file looked up in the
// config directory.
const RunConfigName = "roomscan"

// RunConfig holds the CLI settings. Values come from, in increasing
// precedence: defaults, roomscan.json, ROOMSCAN_* environment variables,
// and explicit Set calls (used for command-line flags).
type RunConfig struct {
	v *viper.Viper
}

// LoadRunConfig reads roomscan.json from configDir. A missing file is not an
// error; defaults and the environment still apply.
func LoadRunConfig(configDir string) (*RunConfig, error) {
	v := viper.New()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")
	v.SetDefault("dbPath", "roomscan.db")
	v.SetDefault("tuningPath", DefaultConfigPath)
	v.SetDefault("scenePath", "")
	v.SetDefault("requestsPath", "")
	v.SetDefault("seed", int64(0))
	v.SetDefault("useJob", false)

	v.SetEnvPrefix("ROOMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(RunConfigName)
	v.SetConfigType("json")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return &RunConfig{v: v}, nil
}

// Set overrides a key, taking precedence over file and environment.
func (c *RunConfig) Set(key string, value interface{}) { c.v.Set(key, value) }

func (c *RunConfig) LogLevel() string { return c.v.GetString("logLevel") }
func (c *RunConfig) LogFormat() string { return c.v.GetString("logFormat") }
func (c *RunConfig) DBPath() string { return c.v.GetString("dbPath") }
func (c *RunConfig) TuningPath() string { return c.v.GetString("tuningPath") }
func (c *RunConfig) ScenePath() string { return c.v.GetString("scenePath") }
func (c *RunConfig) RequestsPath() string { return c.v.GetString("requestsPath") }
func (c *RunConfig) Seed() int64 { return c.v.GetInt64("seed") }
func (c *RunConfig) UseJob() bool { return c.v.GetBool("useJob") }

// ConfigFile returns the file that was read, or "" when none was found.
func (c *RunConfig) ConfigFile() string { return c.v.ConfigFileUsed() }
