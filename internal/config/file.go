package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	APIURL          string `toml:"api_url"`
	Language        string `toml:"language"`
	HTTPTimeout     string `toml:"http_timeout"`
	SupabaseURL     string `toml:"supabase_url"`
	SupabaseAnonKey string `toml:"supabase_anon_key"`
	AudioFormat     string `toml:"audio_format"`
	AudioDevice     string `toml:"audio_device"`
	DataDir         string `toml:"data_dir"`
	PersonasFile    string `toml:"personas_file"`
	LogLevel        string `toml:"log_level"`
}

// applyFileConfig merges the TOML user config into cfg. A missing or broken
// file leaves the defaults untouched.
func applyFileConfig(cfg *AppConfig, path string) {
	if path == "" {
		return
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return
	}

	if fc.APIURL != "" {
		cfg.Backend.URL = fc.APIURL
	}
	if fc.Language != "" {
		cfg.Backend.Language = fc.Language
	}
	if fc.HTTPTimeout != "" {
		if d, err := time.ParseDuration(fc.HTTPTimeout); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if fc.SupabaseURL != "" {
		cfg.Supabase.URL = fc.SupabaseURL
	}
	if fc.SupabaseAnonKey != "" {
		cfg.Supabase.AnonKey = fc.SupabaseAnonKey
	}
	if fc.AudioFormat != "" {
		cfg.Audio.InputFormat = fc.AudioFormat
	}
	if fc.AudioDevice != "" {
		cfg.Audio.InputDevice = fc.AudioDevice
	}
	if fc.DataDir != "" {
		cfg.Storage.DataDir = expandTilde(fc.DataDir)
		cfg.Storage.ResultsDir = filepath.Join(cfg.Storage.DataDir, "results")
	}
	if fc.PersonasFile != "" {
		cfg.PersonasFile = expandTilde(fc.PersonasFile)
	}
	if fc.LogLevel != "" {
		cfg.Log.Level = fc.LogLevel
	}
}

func configFilePath() string {
	if p := os.Getenv("ENTERVIO_CONFIG"); p != "" {
		return expandTilde(p)
	}

	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "entervio")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "entervio")
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
