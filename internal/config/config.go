package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Oxyrus/albumshare/internal/logging"
)

type Config struct {
	Addr            string
	DatabaseURL     string
	DatabaseName    string
	// DatabaseURLSet and DatabaseNameSet report whether the values came from
	// the environment rather than the defaults.
	DatabaseURLSet  bool
	DatabaseNameSet bool
	LogLevel        slog.Level
	LogFormat       string
	AllowedOrigins  []string
	Gzip            bool
	UniqueSlugs     bool
	ShutdownTimeout time.Duration
}

// Keys and the environment variables they are read from.
const (
	keyPort            = "port"
	keyDatabaseURL     = "database_url"
	keyDatabaseName    = "database_name"
	keyLogLevel        = "log_level"
	keyLogFormat       = "log_format"
	keyCORSOrigins     = "cors_origins"
	keyGzip            = "gzip"
	keyUniqueSlugs     = "unique_slugs"
	keyShutdownTimeout = "shutdown_timeout"
)

var envNames = map[string]string{
	keyPort:            "PORT",
	keyDatabaseURL:     "DATABASE_URL",
	keyDatabaseName:    "DATABASE_NAME",
	keyLogLevel:        "ALBUMSHARE_LOG_LEVEL",
	keyLogFormat:       "ALBUMSHARE_LOG_FORMAT",
	keyCORSOrigins:     "ALBUMSHARE_CORS_ORIGINS",
	keyGzip:            "ALBUMSHARE_GZIP",
	keyUniqueSlugs:     "ALBUMSHARE_UNIQUE_SLUGS",
	keyShutdownTimeout: "ALBUMSHARE_SHUTDOWN_TIMEOUT",
}

var defaults = map[string]string{
	keyPort:            "8000",
	keyDatabaseURL:     "sqlite://data/albumshare.db",
	keyDatabaseName:    "albumshare",
	keyLogLevel:        "info",
	keyLogFormat:       logging.FormatText,
	keyCORSOrigins:     "*",
	keyGzip:            "false",
	keyUniqueSlugs:     "false",
	keyShutdownTimeout: "10s",
}

// Load reads the dotenv files (".env" when none are given) into the process
// environment without overriding variables that are already set, then builds
// the configuration from the environment. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	return FromEnv()
}

// FromEnv builds the configuration from environment variables alone.
func FromEnv() (*Config, error) {
	v := viper.New()
	for key, env := range envNames {
		v.SetDefault(key, defaults[key])
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString(keyPort)))
	if err != nil || port < 1 || port > 65535 {
		return nil, fmt.Errorf("config: PORT must be a number between 1 and 65535, got %q", v.GetString(keyPort))
	}

	gzip, err := parseBool(v, keyGzip)
	if err != nil {
		return nil, err
	}

	uniqueSlugs, err := parseBool(v, keyUniqueSlugs)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := time.ParseDuration(strings.TrimSpace(v.GetString(keyShutdownTimeout)))
	if err != nil || shutdownTimeout <= 0 {
		return nil, fmt.Errorf("config: %s must be a positive duration, got %q", envNames[keyShutdownTimeout], v.GetString(keyShutdownTimeout))
	}

	cfg := &Config{
		Addr:            ":" + strconv.Itoa(port),
		DatabaseURL:     strings.TrimSpace(v.GetString(keyDatabaseURL)),
		DatabaseName:    strings.TrimSpace(v.GetString(keyDatabaseName)),
		DatabaseURLSet:  isSet(envNames[keyDatabaseURL]),
		DatabaseNameSet: isSet(envNames[keyDatabaseName]),
		LogLevel:        logging.ParseLevel(v.GetString(keyLogLevel), slog.LevelInfo),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString(keyLogFormat))),
		AllowedOrigins:  splitList(v.GetString(keyCORSOrigins)),
		Gzip:            gzip,
		UniqueSlugs:     uniqueSlugs,
		ShutdownTimeout: shutdownTimeout,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return nil, fmt.Errorf("config: %s entries must be \"*\" or an http(s) origin, got %q", envNames[keyCORSOrigins], origin)
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaults[keyDatabaseURL]
	}
	if cfg.DatabaseName == "" {
		cfg.DatabaseName = defaults[keyDatabaseName]
	}

	return cfg, nil
}

func parseBool(v *viper.Viper, key string) (bool, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", envNames[key], raw)
	}
	return b, nil
}

func isSet(env string) bool {
	value, ok := os.LookupEnv(env)
	return ok && strings.TrimSpace(value) != ""
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
