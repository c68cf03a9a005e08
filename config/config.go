package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 存储驱动
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRemote   = "remote"
)

// Config 应用全局配置结构体
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	Database    DatabaseConfig    `mapstructure:"db"`
	SQLite      SQLiteConfig      `mapstructure:"sqlite"`
	Remote      RemoteConfig      `mapstructure:"remote"`
	Redis       RedisConfig       `mapstructure:"redis"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         LogConfig         `mapstructure:"log"`
	Calendar    CalendarConfig    `mapstructure:"calendar"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port      int        `mapstructure:"port"`
	BodyLimit int64      `mapstructure:"body_limit"` // 请求体上限（字节）
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StoreConfig 计划存储端选择
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite | remote
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// SQLiteConfig 嵌入式存储配置
type SQLiteConfig struct {
	Path string `mapstructure:"path"` // ":memory:" 或文件路径
}

// RemoteConfig 远端记录服务配置
type RemoteConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	ProjectID string        `mapstructure:"project_id"`
	PublicKey string        `mapstructure:"public_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RedisConfig Redis 配置（仅用于限流）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig 滑动窗口限流
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig 日历视图配置
type CalendarConfig struct {
	Timezone           string `mapstructure:"timezone"`             // 计算"今天"所用时区
	UpcomingWindowDays int    `mapstructure:"upcoming_window_days"` // 0 表示不限
}

// Location 解析日历时区
func (c CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// MaintenanceConfig 设备保养提醒阈值
type MaintenanceConfig struct {
	DueSoonDays      int     `mapstructure:"due_soon_days"`
	DueSoonHours     float64 `mapstructure:"due_soon_hours"`
	AlertWindowDays  int     `mapstructure:"alert_window_days"`
	AlertWindowHours float64 `mapstructure:"alert_window_hours"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 只补齐尚未设置的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CROPCAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.driver", DriverSQLite)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "crop_calendar")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("sqlite.path", "cropcal.db")

	v.SetDefault("remote.timeout", "10s")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.limit", 120)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.timezone", "")
	v.SetDefault("calendar.upcoming_window_days", 0)

	v.SetDefault("maintenance.due_soon_days", 7)
	v.SetDefault("maintenance.due_soon_hours", 50)
	v.SetDefault("maintenance.alert_window_days", 30)
	v.SetDefault("maintenance.alert_window_hours", 100)
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	case DriverRemote:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("配置校验失败: store.driver=remote 时 remote.base_url 不能为空")
		}
	default:
		return fmt.Errorf("配置校验失败: 未知的 store.driver %q", c.Store.Driver)
	}
	if _, err := c.Calendar.Location(); err != nil {
		return fmt.Errorf("配置校验失败: calendar.timezone 无效: %w", err)
	}
	if c.Calendar.UpcomingWindowDays < 0 {
		return fmt.Errorf("配置校验失败: calendar.upcoming_window_days 不能为负数")
	}
	m := c.Maintenance
	if m.DueSoonDays < 0 || m.DueSoonHours < 0 || m.AlertWindowDays < 0 || m.AlertWindowHours < 0 {
		return fmt.Errorf("配置校验失败: maintenance 阈值不能为负数")
	}
	if m.DueSoonDays > m.AlertWindowDays {
		return fmt.Errorf("配置校验失败: maintenance.due_soon_days 不能大于 alert_window_days")
	}
	return nil
}
