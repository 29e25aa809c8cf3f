package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Feed          FeedConfig          `mapstructure:"feed"`
	Ads           AdsConfig           `mapstructure:"ads"`
	Video         VideoConfig         `mapstructure:"video"`
	Log           LogConfig           `mapstructure:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Mode    string `mapstructure:"mode"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint  string   `mapstructure:"endpoint"`
	AccessKey string   `mapstructure:"access_key"`
	SecretKey string   `mapstructure:"secret_key"`
	UseSSL    bool     `mapstructure:"use_ssl"`
	Buckets   []string `mapstructure:"buckets"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Hosts []string          `mapstructure:"hosts"`
	Index map[string]string `mapstructure:"index"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回 token 有效期
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// FeedConfig 信息流配置
type FeedConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`
}

// CacheTTL 返回匿名首页缓存时间
func (f *FeedConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

// AdsConfig 广告配置
type AdsConfig struct {
	DailyViewLimit  int     `mapstructure:"daily_view_limit"`
	ShowProbability float64 `mapstructure:"show_probability"`
	CooldownMinutes int     `mapstructure:"cooldown_minutes"`
}

// Cooldown 返回同会话两次广告展示的最小间隔
func (a *AdsConfig) Cooldown() time.Duration {
	return time.Duration(a.CooldownMinutes) * time.Minute
}

// VideoConfig 视频上传配置
type VideoConfig struct {
	MaxDurationSeconds int      `mapstructure:"max_duration_seconds"`
	MaxFileSizeMB      int64    `mapstructure:"max_file_size_mb"`
	AllowedFormats     []string `mapstructure:"allowed_formats"`
}

// MaxFileSize 返回最大文件大小（字节）
func (v *VideoConfig) MaxFileSize() int64 {
	return v.MaxFileSizeMB * 1024 * 1024
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

var globalConfig *Config

// Load 读取并校验配置文件
// 环境变量以 REELGO_ 为前缀按 REELGO_DATABASE_HOST 的形式覆盖文件配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("REELGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

// setDefaults 为可省略的配置段填默认值，连接类配置必须显式给出
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 8000)
	v.SetDefault("app.mode", "debug")

	v.SetDefault("feed.default_page_size", 10)
	v.SetDefault("feed.max_page_size", 30)
	v.SetDefault("feed.cache_ttl_seconds", 10)

	v.SetDefault("ads.daily_view_limit", 5)
	v.SetDefault("ads.show_probability", 0.2)
	v.SetDefault("ads.cooldown_minutes", 5)

	v.SetDefault("video.max_duration_seconds", 300)
	v.SetDefault("video.max_file_size_mb", 100)
	v.SetDefault("video.allowed_formats", []string{"mp4", "webm", "avi", "mov"})

	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if p := c.Ads.ShowProbability; p < 0 || p > 1 {
		return fmt.Errorf("config: ads.show_probability must be within [0, 1], got %v", p)
	}
	if c.Feed.MaxPageSize < c.Feed.DefaultPageSize {
		return fmt.Errorf("config: feed.max_page_size must be >= feed.default_page_size")
	}
	return nil
}

// Get 获取全局配置，Load 之前调用直接 panic
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetMinIO 获取MinIO配置
func GetMinIO() *MinIOConfig {
	return &Get().MinIO
}

// GetKafka 获取Kafka配置
func GetKafka() *KafkaConfig {
	return &Get().Kafka
}

// GetElasticsearch 获取Elasticsearch配置
func GetElasticsearch() *ElasticsearchConfig {
	return &Get().Elasticsearch
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetVideo 获取视频配置
func GetVideo() *VideoConfig {
	return &Get().Video
}
