package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	CORS       CORS      `yaml:"cors"`
	API        API       `yaml:"api"`
	Dashboard  Dashboard `yaml:"dashboard"`
	Session    Session   `yaml:"session"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	// без WriteTimeout по умолчанию: крупный филиал order api отдает долго
	Timeout      time.Duration `yaml:"timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"0s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	FrontendDir  string        `yaml:"frontend_dir" env:"FRONTEND_DIR" env-default:"./frontend-dist"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

type API struct {
	BaseURL    string `yaml:"base_url" env:"ORDER_API_BASE_URL" env-required:"true"`
	OrderLimit int    `yaml:"order_limit" env:"ORDER_API_LIMIT" env-default:"2000"`
}

type Dashboard struct {
	Branches      []string      `yaml:"branches" env:"DASHBOARD_BRANCHES" env-separator:"," env-default:"1,2,3"`
	DefaultBranch string        `yaml:"default_branch" env:"DASHBOARD_DEFAULT_BRANCH" env-default:"1"`
	Location      string        `yaml:"location" env:"DASHBOARD_LOCATION" env-default:"Local"`
	Debounce      time.Duration `yaml:"debounce" env-default:"50ms"`
}

type Session struct {
	Driver string        `yaml:"driver" env:"SESSION_DRIVER" env-default:"memory"`
	TTL    time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	Redis  Redis         `yaml:"redis"`
	MySQL  MySQL         `yaml:"mysql"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type MySQL struct {
	DSN string `yaml:"dsn" env:"MYSQL_DSN"`
}

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverMySQL  = "mysql"
)

// MustConfig loads .env if present, then the yaml file from CONFIG_PATH (./config/local.yaml
// by default), then environment overrides.
func MustConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("cannot read .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadLocation resolves Dashboard.Location; "Local" is the server's zone.
func (c *Config) LoadLocation() (*time.Location, error) {
	return time.LoadLocation(c.Dashboard.Location)
}

func (c *Config) validate() error {
	if len(c.Dashboard.Branches) == 0 {
		return errors.New("dashboard.branches is empty")
	}

	found := false
	for _, b := range c.Dashboard.Branches {
		if b == c.Dashboard.DefaultBranch {
			found = true
		}
	}
	if !found {
		return errors.New("dashboard.default_branch is not in dashboard.branches")
	}

	switch c.Session.Driver {
	case DriverMemory, DriverRedis:
	case DriverMySQL:
		if c.Session.MySQL.DSN == "" {
			return errors.New("session.mysql.dsn is required for the mysql driver")
		}
	default:
		return errors.New("session.driver must be memory, redis or mysql")
	}

	if c.API.OrderLimit <= 0 {
		return errors.New("api.order_limit must be positive")
	}

	return nil
}
