package config

import (
	"os"

	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel   = "info"
	DefaultIntervalMs = 100

	// EnvConfig overrides the config file search path
	EnvConfig = "RAZERCTL_CONFIG"
)

// ProfileConfig describes the device configuration applied when the power
// source matches the profile
type ProfileConfig struct {
	PerformanceMode    string `mapstructure:"performance_mode"`
	LogoMode           string `mapstructure:"logo_mode"`
	KeyboardBrightness uint8  `mapstructure:"keyboard_brightness"`
	LightsAlwaysOn     bool   `mapstructure:"lights_always_on"`
	BatteryCare        bool   `mapstructure:"battery_care"`
}

// PerfMode returns the parsed performance mode; call Validate first
func (p ProfileConfig) PerfMode() device.PerfMode {
	mode, _ := device.ParsePerfMode(p.PerformanceMode)
	return mode
}

// Logo returns the parsed logo mode; call Validate first
func (p ProfileConfig) Logo() device.LogoMode {
	mode, _ := device.ParseLogoMode(p.LogoMode)
	return mode
}

func (p ProfileConfig) validate(name string) error {
	if _, ok := device.ParsePerfMode(p.PerformanceMode); !ok {
		return errors.WithMessage(errors.ErrInvalidConfig,
			"unknown performance mode in "+name+": "+p.PerformanceMode)
	}
	if _, ok := device.ParseLogoMode(p.LogoMode); !ok {
		return errors.WithMessage(errors.ErrInvalidConfig,
			"unknown logo mode in "+name+": "+p.LogoMode)
	}
	return nil
}

type Config struct {
	// IntervalMs is the tick cadence driven by the host loop
	IntervalMs int `mapstructure:"interval_ms"`

	LogLevel string `mapstructure:"log_level"`

	// StatusMessages gates optional informational notifications
	StatusMessages bool `mapstructure:"status_messages"`

	// Telemetry enables the sqlite event journal at Database
	Telemetry bool   `mapstructure:"telemetry"`
	Database  string `mapstructure:"database"`

	ACProfile      ProfileConfig `mapstructure:"ac_profile"`
	BatteryProfile ProfileConfig `mapstructure:"battery_profile"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interval_ms", DefaultIntervalMs)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("status_messages", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", "")

	v.SetDefault("ac_profile.performance_mode", "Performance")
	v.SetDefault("ac_profile.logo_mode", "Off")
	v.SetDefault("ac_profile.keyboard_brightness", 50)
	v.SetDefault("ac_profile.lights_always_on", false)
	v.SetDefault("ac_profile.battery_care", true)

	v.SetDefault("battery_profile.performance_mode", "Battery")
	v.SetDefault("battery_profile.logo_mode", "Off")
	v.SetDefault("battery_profile.keyboard_brightness", 50)
	v.SetDefault("battery_profile.lights_always_on", false)
	v.SetDefault("battery_profile.battery_care", true)
}

// Load reads configuration from the TOML file, environment and command line
// flags, in increasing order of precedence
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	flags := pflag.NewFlagSet("razerctl", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	logLevel := flags.String("log-level", "", "Log level (debug, info, warn, error)")
	statusMessages := flags.Bool("status-messages", false, "Show optional status notifications")
	intervalMs := flags.Int("interval-ms", 0, "Tick interval in milliseconds")
	telemetry := flags.Bool("telemetry", false, "Record reconciliation events to the database")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	if path := os.Getenv(EnvConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("razerctl")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath("$HOME/.config/razerctl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Flags override file values only when actually set
	if flags.Changed("log-level") {
		v.Set("log_level", *logLevel)
	}
	if flags.Changed("status-messages") {
		v.Set("status_messages", *statusMessages)
	}
	if flags.Changed("interval-ms") {
		v.Set("interval_ms", *intervalMs)
	}
	if flags.Changed("telemetry") {
		v.Set("telemetry", *telemetry)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.WithMessage(errors.ErrInvalidLogLevel,
			"invalid log level: "+c.LogLevel)
	}

	if c.IntervalMs <= 0 {
		return errors.New(errors.ErrInvalidInterval)
	}

	if err := c.ACProfile.validate("ac_profile"); err != nil {
		return err
	}
	if err := c.BatteryProfile.validate("battery_profile"); err != nil {
		return err
	}

	if c.Telemetry && c.Database == "" {
		return errors.WithMessage(errors.ErrMissingConfig,
			"telemetry enabled but no database path configured")
	}

	return nil
}
