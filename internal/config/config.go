package config

import (
	"fmt"
	"strings"

	"github.com/blues/takeover/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Task      TaskConfig      `mapstructure:"task"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Takeover  TakeoverConfig  `mapstructure:"takeover"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres, sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
}

// ChainConfig Solana RPC 配置
type ChainConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	RpcUrl         string `mapstructure:"rpc_url"`
	Commitment     string `mapstructure:"commitment"`      // processed, confirmed, finalized
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 单次 RPC 超时
	SyncWorkers    int    `mapstructure:"sync_workers"`    // 同步协程池大小
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	Burst             int     `mapstructure:"burst"`
	Capacity          int     `mapstructure:"capacity"`     // 最多跟踪的客户端数量
	IdleSeconds       int     `mapstructure:"idle_seconds"` // 空闲多久后清理
}

// TakeoverConfig 创建众筹时缺省参数
type TakeoverConfig struct {
	DefaultRewardRateBp    int `mapstructure:"default_reward_rate_bp"`
	DefaultParticipationBp int `mapstructure:"default_participation_bp"`
}

// SetDefaults 设置默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "takeover")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "takeover.db")
	v.SetDefault("chain.enabled", false)
	v.SetDefault("chain.rpc_url", "https://api.mainnet-beta.solana.com")
	v.SetDefault("chain.commitment", "confirmed")
	v.SetDefault("chain.timeout_seconds", 10)
	v.SetDefault("chain.sync_workers", 8)
	v.SetDefault("task.interval", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.capacity", 10000)
	v.SetDefault("rate_limit.idle_seconds", 300)
	v.SetDefault("takeover.default_reward_rate_bp", 150)
	v.SetDefault("takeover.default_participation_bp", 1000)
}

// LoadFrom 从给定的 viper 实例解析配置
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q, supported drivers: postgres, sqlite", c.Database.Driver)
	}
	if c.Task.Interval <= 0 {
		return fmt.Errorf("task.interval must be positive, got %d", c.Task.Interval)
	}
	if c.Chain.Enabled && c.Chain.RpcUrl == "" {
		return fmt.Errorf("chain.rpc_url is required when chain sync is enabled")
	}
	return nil
}

func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/takeover")

	// 自动读取环境变量，如 TAKEOVER_DATABASE_HOST
	v.SetEnvPrefix("takeover")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	config, err := LoadFrom(v)
	if err != nil {
		logger.Fatal("Unable to load config: %v", err)
	}

	return config
}
