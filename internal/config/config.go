package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"TUI18_LOG_LEVEL" env-default:"info"`
	LogFile           string        `yaml:"log-file" env:"TUI18_LOG_FILE" env-default:"logs/18tui.log"`
	Storage           string        `yaml:"storage" env:"TUI18_STORAGE" env-default:"file"`
	SaveDir           string        `yaml:"save-dir" env:"TUI18_SAVE_DIR" env-default:"saves"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"TUI18_SQLITE_PATH" env-default:"saves/18tui.db"`
	SessionsDir       string        `yaml:"sessions-dir" env:"TUI18_SESSIONS_DIR" env-default:"sessions"`
	ManifestPath      string        `yaml:"manifest-path" env:"TUI18_MANIFEST_PATH" env-default:""`
	TickRate          time.Duration `yaml:"tick-rate" env:"TUI18_TICK_RATE" env-default:"250ms"`
	SyncOnStart       bool          `yaml:"sync-on-start" env:"TUI18_SYNC_ON_START" env-default:"true"`
	Redis             Redis         `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"TUI18_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"TUI18_REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"TUI18_REDIS_DB" env-default:"0"`
}

// MustLoad - load all configurations in config.yml file, falling back to the
// environment when the file does not exist.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("could not read environment: %w", err)
		}

		return config, config.validate()
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return config, config.validate()
}

// GetManifestPath returns the manifest location, defaulting to a file inside
// the sessions directory.
func (that *Config) GetManifestPath() string {
	if that.ManifestPath != "" {
		return that.ManifestPath
	}

	return filepath.Join(that.SessionsDir, ".18tui-manifest.json")
}

func (that *Config) validate() error {
	switch that.Storage {
	case StorageFile, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.TickRate <= 0 {
		return fmt.Errorf("tick-rate must be positive, got %s", that.TickRate)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
