package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	// 单请求超时
	RequestTimeoutSec int
	RateLimitRPS      float64
	RateLimitBurst    int
	MaxConcurrent     int64
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

func (a App) IsProduction() bool {
	return strings.EqualFold(a.Env, "production") || strings.EqualFold(a.Env, "prod")
}

type Log struct {
	Level      string
	JSON       bool
	File       string // 非空时同时写文件并按大小切割
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Catalog 图书目录（Google Books）
type Catalog struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"`
}

// Lapras 技能评分档案
type Lapras struct {
	TimeoutSec   int      `mapstructure:"timeout_sec"`
	AllowedHosts []string `mapstructure:"allowed_hosts"`
	CacheTTLSec  int      `mapstructure:"cache_ttl_sec"`
}

type Identity struct {
	Provider    string `mapstructure:"provider"`
	UserInfoURL string `mapstructure:"userinfo_url"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
}

type Review struct {
	AllowDuplicates bool `mapstructure:"allow_duplicates"`
}

type Admin struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

type Tracing struct {
	Enabled     bool    `mapstructure:"enabled"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis    `mapstructure:"redis"`
	Catalog  Catalog  `mapstructure:"catalog"`
	Lapras   Lapras   `mapstructure:"lapras"`
	Identity Identity `mapstructure:"identity"`
	Review   Review   `mapstructure:"review"`
	Admin    Admin    `mapstructure:"admin"`
	Tracing  Tracing  `mapstructure:"tracing"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "paper-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.ratelimitrps", 200)
	v.SetDefault("app.http.ratelimitburst", 400)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 5)
	v.SetDefault("log.maxagedays", 14)
	v.SetDefault("jwt.issuer", "paper-api")
	v.SetDefault("jwt.accesstokenttlmin", 60*24)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:paper.db?_foreign_keys=on")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("catalog.timeout_sec", 10)
	v.SetDefault("catalog.cache_ttl_sec", 600)
	v.SetDefault("lapras.timeout_sec", 10)
	v.SetDefault("lapras.cache_ttl_sec", 300)
	v.SetDefault("identity.provider", "google")
	v.SetDefault("identity.timeout_sec", 10)
	v.SetDefault("review.allow_duplicates", true)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// Read 读取配置，出错返回 error（测试与 CLI 使用）
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.App.IsProduction() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 bytes in production")
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = "dev-only-insecure-secret"
	}
	return nil
}

// Load 启动入口用：读取失败直接退出
func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("config file %s not found, using defaults + env", path)
		path = ""
	}
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
