package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// EnvPrefix is prepended to every environment variable the bot reads
const EnvPrefix = "RSN"

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("subcount-bot version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	LogFile          string        `mapstructure:"log_file"`
	ClientID         string        `mapstructure:"client_id"`
	ClientSecret     string        `mapstructure:"client_secret"`
	TokenFile        string        `mapstructure:"oauth2token_file"`
	PreviousPostFile string        `mapstructure:"previous_tweet_file"`
	AccountsFile     string        `mapstructure:"accounts_file"`
	Logging          LoggingConfig `mapstructure:"logging"`
	Twitter          TwitterConfig `mapstructure:"twitter"`
	YouTube          YouTubeConfig `mapstructure:"youtube"`
	HTTP             HTTPConfig    `mapstructure:"http"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	DisableConsole    bool   `mapstructure:"disable_console"`
	// OutputPath is the append-only log sink, copied from Config.LogFile
	OutputPath string `mapstructure:"-"`
}

type TwitterConfig struct {
	AuthURL     string `mapstructure:"auth_url"`
	TokenURL    string `mapstructure:"token_url"`
	APIBaseURL  string `mapstructure:"api_base_url"`
	RedirectURL string `mapstructure:"redirect_url"`
}

type YouTubeConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// defaults lists every key the bot knows. Keys must be registered for
// AutomaticEnv to reach them through Unmarshal.
var defaults = map[string]any{
	"log_file":                   "",
	"client_id":                  "",
	"client_secret":              "",
	"oauth2token_file":           "",
	"previous_tweet_file":        "",
	"accounts_file":              "",
	"logging.level":              "info",
	"logging.format":             "console",
	"logging.disable_console":    false,
	"logging.disable_stacktrace": true,
	"twitter.auth_url":           "https://twitter.com/i/oauth2/authorize",
	"twitter.token_url":          "https://api.twitter.com/2/oauth2/token",
	"twitter.api_base_url":       "https://api.twitter.com",
	"twitter.redirect_url":       "https://twitter.com",
	"youtube.api_key":            "",
	"youtube.base_url":           "https://www.googleapis.com/youtube/v3",
	"http.timeout":               "30s",
}

// InitFlags registers the configuration flags on the given flag set (without parsing)
func InitFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a config file (default ./config.yaml)")
	flags.String("log-file", "", "Path to the append-only log file")
	flags.String("accounts-file", "", "Path to the tracked accounts YAML file")
}

// Load reads .env, the environment, an optional config file and the given
// flags, in increasing order of precedence. Required values are not checked
// here: each component validates what it uses.
func Load(flags *pflag.FlagSet) (*Config, error) {
	viper.Reset() // Ensure clean state

	// A missing .env is fine, the process environment is used as is
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	configFile := ""
	if flags != nil {
		configFile, _ = flags.GetString("config")
		if f := flags.Lookup("log-file"); f != nil {
			if err := viper.BindPFlag("log_file", f); err != nil {
				return nil, err
			}
		}
		if f := flags.Lookup("accounts-file"); f != nil {
			if err := viper.BindPFlag("accounts_file", f); err != nil {
				return nil, err
			}
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.subcount-bot")
		}
		viper.AddConfigPath("/etc/subcount-bot")

		if err := viper.ReadInConfig(); err != nil {
			// No config file at all is fine, env vars carry everything
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.Logging.OutputPath = config.LogFile

	if config.HTTP.Timeout < 0 {
		return nil, fmt.Errorf("http.timeout must not be negative, got %s", config.HTTP.Timeout)
	}

	return &config, nil
}
