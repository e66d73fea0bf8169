package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds everything the client needs to reach the backend and the
// local machine resources.
type AppConfig struct {
	Backend  BackendConfig
	Supabase SupabaseConfig
	Audio    AudioConfig
	Storage  StorageConfig
	Log      LogConfig
	Sandbox  SandboxConfig

	// PersonasFile overrides the embedded interviewer catalog when set.
	PersonasFile string
}

type BackendConfig struct {
	URL      string
	Timeout  time.Duration
	Language string
}

type AudioConfig struct {
	InputFormat string // ffmpeg -f value, e.g. avfoundation, pulse, dshow
	InputDevice string
	FFmpegPath  string
	FFplayPath  string
}

type StorageConfig struct {
	DataDir    string
	ResultsDir string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

type SandboxConfig struct {
	Addr string
}

// LoadAppConfig builds the configuration from defaults, the optional user
// config file and finally the environment.
func LoadAppConfig() *AppConfig {
	cfg := defaultAppConfig()
	applyFileConfig(cfg, configFilePath())
	applyEnvOverrides(cfg)
	return cfg
}

func defaultAppConfig() *AppConfig {
	dataDir := defaultDataDir()
	return &AppConfig{
		Backend: BackendConfig{
			URL:      "http://localhost:8000",
			Timeout:  120 * time.Second,
			Language: "fr",
		},
		Audio: AudioConfig{
			InputFormat: defaultInputFormat(),
			InputDevice: "default",
			FFmpegPath:  "ffmpeg",
			FFplayPath:  "ffplay",
		},
		Storage: StorageConfig{
			DataDir:    dataDir,
			ResultsDir: filepath.Join(dataDir, "results"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Sandbox: SandboxConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	cfg.Backend.URL = strings.TrimRight(getEnv("ENTERVIO_API_URL", cfg.Backend.URL), "/")
	cfg.Backend.Timeout = getEnvAsDuration("ENTERVIO_HTTP_TIMEOUT", cfg.Backend.Timeout)
	cfg.Backend.Language = getEnv("ENTERVIO_LANGUAGE", cfg.Backend.Language)

	cfg.Supabase.URL = strings.TrimRight(getEnv("SUPABASE_URL", cfg.Supabase.URL), "/")
	cfg.Supabase.AnonKey = getEnv("SUPABASE_ANON_KEY", cfg.Supabase.AnonKey)

	cfg.Audio.InputFormat = getEnv("ENTERVIO_AUDIO_FORMAT", cfg.Audio.InputFormat)
	cfg.Audio.InputDevice = getEnv("ENTERVIO_AUDIO_DEVICE", cfg.Audio.InputDevice)
	cfg.Audio.FFmpegPath = getEnv("ENTERVIO_FFMPEG", cfg.Audio.FFmpegPath)
	cfg.Audio.FFplayPath = getEnv("ENTERVIO_FFPLAY", cfg.Audio.FFplayPath)

	if v := os.Getenv("ENTERVIO_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = expandTilde(v)
		cfg.Storage.ResultsDir = filepath.Join(cfg.Storage.DataDir, "results")
	}
	if v := os.Getenv("ENTERVIO_RESULTS_DIR"); v != "" {
		cfg.Storage.ResultsDir = expandTilde(v)
	}

	cfg.Log.Level = getEnv("ENTERVIO_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("ENTERVIO_LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("ENTERVIO_LOG_FILE", cfg.Log.File)

	cfg.Sandbox.Addr = getEnv("ENTERVIO_SANDBOX_ADDR", cfg.Sandbox.Addr)
	if getEnvAsBool("ENTERVIO_SANDBOX", false) {
		cfg.Backend.URL = "http://" + cfg.Sandbox.Addr
		if cfg.Supabase.URL == "" {
			cfg.Supabase.URL = cfg.Backend.URL
		}
	}

	if v := os.Getenv("ENTERVIO_PERSONAS_FILE"); v != "" {
		cfg.PersonasFile = expandTilde(v)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// plain seconds are accepted too
		if secs := getEnvAsInt(key, -1); secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".entervio")
	}
	return filepath.Join(".", ".entervio")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
