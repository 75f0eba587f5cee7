package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config はクライアント全体の設定です
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Listing ListingConfig `mapstructure:"listing"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Preview PreviewConfig `mapstructure:"preview"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// StorageConfig は認証情報の保存先です
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // file | sqlite | redis | memory
	Path      string `mapstructure:"path"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type ListingConfig struct {
	PageSize int    `mapstructure:"page_size"`
	SortBy   string `mapstructure:"sort_by"`
	SortDir  string `mapstructure:"sort_dir"`
}

type AdminConfig struct {
	PageSize    int `mapstructure:"page_size"`
	CatalogSize int `mapstructure:"catalog_size"`
}

type PreviewConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxWidth uint   `mapstructure:"max_width"`
}

type SessionConfig struct {
	// LogoutOnUnauthorized が true の場合、トークン付きリクエストが 401 を返したら自動でログアウトします
	LogoutOnUnauthorized bool `mapstructure:"logout_on_unauthorized"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// EnvPrefix は環境変数のプレフィックスです（例: BOOKSWAP_API_BASE_URL）
const EnvPrefix = "BOOKSWAP"

// Load は .env、設定ファイル、環境変数の順に設定を読み込みます
// configPath が空の場合は ~/.bookswap/config.yaml を（存在すれば）読み込みます
func Load(configPath string) (*Config, error) {
	// .env がなくてもエラーにはしません
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	home := homeDir()

	v := viper.New()
	setDefaults(v, home)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		candidate := filepath.Join(home, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath(cfg.Storage.Driver, home)
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultStoragePath はドライバごとの既定の保存先を返します
func defaultStoragePath(driver, home string) string {
	if driver == DriverSQLite {
		return filepath.Join(home, "bookswap.db")
	}
	return filepath.Join(home, "credentials.json")
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("storage.driver", DriverFile)
	// 空のままにしておき、ドライバ確定後に defaultStoragePath で埋めます
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis_addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.key_prefix", "bookswap:")
	v.SetDefault("listing.page_size", 12)
	v.SetDefault("listing.sort_by", "createdAt")
	v.SetDefault("listing.sort_dir", "desc")
	v.SetDefault("admin.page_size", 10)
	v.SetDefault("admin.catalog_size", 200)
	v.SetDefault("preview.dir", filepath.Join(os.TempDir(), "bookswap-previews"))
	v.SetDefault("preview.max_width", 320)
	v.SetDefault("session.logout_on_unauthorized", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.Listing.PageSize <= 0 {
		return fmt.Errorf("listing.page_size must be positive, got %d", c.Listing.PageSize)
	}
	if c.Admin.PageSize <= 0 || c.Admin.CatalogSize <= 0 {
		return fmt.Errorf("admin.page_size and admin.catalog_size must be positive")
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case DriverRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return fmt.Errorf("storage.redis_addr is required for driver %q", c.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage.driver: %q", c.Storage.Driver)
	}
	return nil
}

// Timeout はHTTPクライアントのタイムアウトです
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, ".bookswap")
	}
	return ".bookswap"
}
