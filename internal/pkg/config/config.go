package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by the configuration
	EnvPrefix = "CANVASDL"
	// LocalConfigFile is looked up in the working directory
	LocalConfigFile = "canvas-downloader.toml"
)

// Config holds all configuration for our program, parsed from various sources
// The `mapstructure` tags are used to map the fields to the viper configuration
type Config struct {
	ConfigFile string `mapstructure:"config"`

	// Credentials
	CanvasURL   string `mapstructure:"canvas-url"`
	CanvasToken string `mapstructure:"canvas-token"`

	// Selection
	DestinationFolder string   `mapstructure:"destination-folder"`
	TermIDs           []int    `mapstructure:"term-ids"`
	CourseNames       []string `mapstructure:"course-names"`
	IgnoreFile        string   `mapstructure:"ignore-file"`
	DownloadNewer     bool     `mapstructure:"download-newer"`
	DryRun            bool     `mapstructure:"dry-run"`
	Yes               bool     `mapstructure:"yes"`
	SaveJSON          bool     `mapstructure:"save-json"`
	PanoptoToolID     int64    `mapstructure:"panopto-tool-id"`

	// Network
	MaxConcurrentRequests int           `mapstructure:"max-concurrent-requests"`
	MaxRetry              int           `mapstructure:"max-retry"`
	RetryBaseDelay        time.Duration `mapstructure:"retry-base-delay"`
	RetryMaxDelay         time.Duration `mapstructure:"retry-max-delay"`
	HTTPTimeout           time.Duration `mapstructure:"http-timeout"`
	PerPage               int           `mapstructure:"per-page"`
	MaxDepth              int           `mapstructure:"max-depth"`

	// Logging
	LogLevel         string        `mapstructure:"log-level"`
	Verbose          bool          `mapstructure:"verbose"`
	LogJSON          bool          `mapstructure:"log-json"`
	NoStdoutLogging  bool          `mapstructure:"no-stdout-log"`
	LogFileOutputDir string        `mapstructure:"log-file-output-dir"`
	LogFilePrefix    string        `mapstructure:"log-file-prefix"`
	LogFileRotation  time.Duration `mapstructure:"log-file-rotation"`

	// Stats and metrics
	LiveStats   bool   `mapstructure:"live-stats"`
	MetricsAddr string `mapstructure:"metrics-addr"`
}

var (
	config *Config
	once   sync.Once
)

// InitConfig initializes the configuration
// Flags -> Env -> Config file
// Latest has precedence over the rest
func InitConfig() error {
	var err error
	once.Do(func() {
		config, err = Load(viper.GetViper())
	})
	return err
}

// Load reads the configuration file selected by v's "config" key, applies
// the environment and returns the decoded configuration
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	configFile, err := locateConfigFile(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", configFile, err)
		}
	}

	// This function is used to bring logic to the flags when needed (e.g. live-stats)
	handleFlagsEdgeCases(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.ConfigFile = configFile

	return cfg, nil
}

// locateConfigFile returns explicit if set, otherwise the first existing
// file among the working directory file and the user config directory file
func locateConfigFile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := []string{LocalConfigFile}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "canvas-downloader", "config.toml"))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}

// BindFlags binds the flags to the viper configuration
// This is needed because viper doesn't support same flag name accross multiple commands
// Details here: https://github.com/spf13/viper/issues/375#issuecomment-794668149
func BindFlags(flagSet *pflag.FlagSet) {
	flagSet.VisitAll(func(flag *pflag.Flag) {
		viper.BindPFlag(flag.Name, flag)
	})
}

// Get returns the config struct
func Get() *Config {
	return config
}

// Validate checks the credentials and the tunables
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CanvasToken) == "" {
		return ErrMissingToken
	}

	if !govalidator.IsURL(c.CanvasURL) {
		return fmt.Errorf("%w: %q", ErrInvalidCanvasURL, c.CanvasURL)
	}
	u, err := url.Parse(c.CanvasURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidCanvasURL, c.CanvasURL)
	}

	if c.MaxConcurrentRequests < 1 {
		return fmt.Errorf("%w: max-concurrent-requests must be at least 1", ErrInvalidValue)
	}
	if c.MaxRetry < 1 {
		return fmt.Errorf("%w: max-retry must be at least 1", ErrInvalidValue)
	}
	if c.PerPage < 1 {
		return fmt.Errorf("%w: per-page must be at least 1", ErrInvalidValue)
	}

	return nil
}

func handleFlagsEdgeCases(v *viper.Viper) {
	if v.GetBool("live-stats") {
		// If live-stats is true, set no-stdout-log to true
		v.Set("no-stdout-log", true)
	}

	if v.GetBool("verbose") {
		v.Set("log-level", "debug")
	}
}
