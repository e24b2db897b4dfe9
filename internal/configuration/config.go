package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/markusressel/epfa/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	// Speed is the fan speed in percent [0..100] used for the outer wall
	Speed Percent `json:"speed"`
	// StartLayer is the first layer (1-based) where the fan speed is adjusted
	StartLayer int `json:"startLayer"`

	Interactive bool `json:"interactive"`
	DryRun      bool `json:"dryRun"`

	// Tag is added as a comment to all inserted lines
	Tag string `json:"tag"`
	// Strip removes lines inserted by a previous run before processing
	Strip bool `json:"strip"`

	// Notify sends a desktop notification when done, useful when running as a slicer post-processing script
	Notify bool `json:"notify"`

	Backup     BackupConfig     `json:"backup"`
	History    HistoryConfig    `json:"history"`
	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
}

type BackupConfig struct {
	Enabled bool   `json:"enabled"`
	Suffix  string `json:"suffix"`
}

type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	DbPath  string `json:"dbPath"`
}

type StatisticsConfig struct {
	// Textfile is the path of a prometheus textfile collector file, empty to disable
	Textfile string `json:"textfile"`
}

type ApiConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// MaxBodySize limits uploaded G-code, e.g. "64M"
	MaxBodySize string `json:"maxBodySize"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("epfa")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "epfa"))
		viper.AddConfigPath("/etc/epfa/")
	}

	viper.SetEnvPrefix("epfa")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("speed", 100.0)
	viper.SetDefault("startLayer", 4)
	viper.SetDefault("interactive", false)
	viper.SetDefault("dryRun", false)
	viper.SetDefault("tag", "EPFA")
	viper.SetDefault("strip", false)
	viper.SetDefault("notify", false)

	viper.SetDefault("backup.enabled", false)
	viper.SetDefault("backup.suffix", ".bak")

	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.dbPath", defaultDbPath())

	viper.SetDefault("statistics.textfile", "")

	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)
	viper.SetDefault("api.maxBodySize", "256M")
}

func defaultDbPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return "/var/lib/epfa/epfa.db"
	}
	return filepath.Join(home, ".local", "share", "epfa", "epfa.db")
}

// DetectConfigFile reads the config file, if one exists, and returns its path.
// A missing config file is not an error, defaults and flags are used instead.
func DetectConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return ""
		}
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			percentHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
