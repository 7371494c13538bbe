package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// cliConfig is read from ~/.coachctl.yaml and COACHCTL_* environment variables.
type cliConfig struct {
	ServerURL string `mapstructure:"server_url"`
	Token     string `mapstructure:"token"`
	DBPath    string `mapstructure:"db_path"`
	Sex       string `mapstructure:"sex"`
	Width     int    `mapstructure:"width"`
}

func loadConfig(file string) (cliConfig, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return cliConfig{}, err
		}
		v.AddConfigPath(home)
		v.SetConfigName(".coachctl")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("COACHCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_url", "")
	v.SetDefault("token", "")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("sex", "")
	v.SetDefault("width", 72)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return cliConfig{}, err
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cliConfig{}, err
	}
	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "coachctl.db"
	}
	return filepath.Join(home, ".coachctl", "coach.db")
}
