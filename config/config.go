package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultEpsilon = 30e-5

// Config holds everything a conversion run needs.
type Config struct {
	Tracks       []string  `mapstructure:"tracks"`
	Photos       string    `mapstructure:"photos"`
	Output       string    `mapstructure:"output"`
	Epsilon      float64   `mapstructure:"epsilon"`
	Elevation    bool      `mapstructure:"elevation"`
	StrictStyles bool      `mapstructure:"strict_styles"`
	StripHTML    bool      `mapstructure:"strip_html"`
	Workers      int       `mapstructure:"workers"`
	Summary      string    `mapstructure:"summary"`
	Quiet        bool      `mapstructure:"quiet"`
	Log          LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flag name -> config key
var bindings = map[string]string{
	"tracks":        "tracks",
	"photos":        "photos",
	"output":        "output",
	"epsilon":       "epsilon",
	"elevation":     "elevation",
	"strict-styles": "strict_styles",
	"strip-html":    "strip_html",
	"workers":       "workers",
	"summary":       "summary",
	"quiet":         "quiet",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// RegisterFlags adds the conversion flags to fs. Load picks them up.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringSliceP("tracks", "t", nil, "gpx files to convert, in order")
	fs.StringP("photos", "p", "", "directory or bucket url with geotagged photos")
	fs.StringP("output", "o", "", "kml file to write")
	fs.Float64P("epsilon", "e", DefaultEpsilon, "simplification tolerance in degrees")
	fs.Bool("elevation", false, "fill missing elevations from SRTM data")
	fs.Bool("strict-styles", false, "fail when there are more tracks than styles")
	fs.Bool("strip-html", false, "strip html from track descriptions")
	fs.IntP("workers", "w", runtime.NumCPU(), "photos read concurrently")
	fs.String("summary", "", "write a json run summary to this file")
	fs.BoolP("quiet", "q", false, "hide progress bars")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "text", "text or json")
	fs.String("config", "", "config file (default gpx2kml.yaml in . or ./configs)")
}

// Load merges defaults, the config file, GPX2KML_* environment variables and
// any flags set on the command line, then validates the result.
func Load(flags *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("tracks", []string{})
	v.SetDefault("photos", "")
	v.SetDefault("output", "")
	v.SetDefault("epsilon", DefaultEpsilon)
	v.SetDefault("elevation", false)
	v.SetDefault("strict_styles", false)
	v.SetDefault("strip_html", false)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("summary", "")
	v.SetDefault("quiet", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %q: %w", file, err)
		}
	} else {
		v.SetConfigName("gpx2kml")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	// GPX2KML_LOG_LEVEL → log.level
	v.SetEnvPrefix("GPX2KML")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range bindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag %q: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Tracks) == 0 {
		errs = append(errs, "at least one track is required")
	}
	for i, t := range c.Tracks {
		if strings.TrimSpace(t) == "" {
			errs = append(errs, fmt.Sprintf("tracks[%d] is empty", i))
		}
	}
	if c.Output == "" {
		errs = append(errs, "output is required")
	}
	if c.Epsilon < 0 {
		errs = append(errs, fmt.Sprintf("epsilon must not be negative, got %v", c.Epsilon))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
