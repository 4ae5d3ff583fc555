// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Suggestions SuggestionsConfig `mapstructure:"suggestions"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
}

// ServerConfig 存储本地桥接服务的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置，为空表示不启用会话加载。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ChatConfig 描述远端问答服务以及请求重试策略。
type ChatConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	ChatPath         string        `mapstructure:"chat_path"`
	SuggestionsPath  string        `mapstructure:"suggestions_path"`
	AttemptTimeout   time.Duration `mapstructure:"attempt_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	AttachmentPrompt string        `mapstructure:"attachment_prompt"`
}

// CacheConfig 描述问答缓存的容量和持久化键。
type CacheConfig struct {
	Capacity   int    `mapstructure:"capacity"`
	PersistKey string `mapstructure:"persist_key"`
}

// SuggestionsConfig 存储本地内置的推荐问题。
type SuggestionsConfig struct {
	Local []string `mapstructure:"local"`
}

// KafkaConfig 存储问答事件投递的配置，Brokers 为空表示不投递。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// MinIOConfig 存储附件对象存储的配置，Endpoint 为空表示不启用。
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	BucketName      string        `mapstructure:"bucket_name"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

const (
	minRetries = 3
	maxRetries = 5
)

// Init 从指定路径读取 YAML 文件并解析到 Conf 变量中，失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}

// Load 读取配置文件并返回解析后的配置，环境变量以 QA_ 为前缀覆盖文件中的值。
func Load(configPath string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	cfg.Chat.MaxRetries = clampRetries(cfg.Chat.MaxRetries)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("chat.chat_path", "/chat")
	v.SetDefault("chat.suggestions_path", "/suggestions")
	v.SetDefault("chat.attempt_timeout", 30*time.Second)
	v.SetDefault("chat.max_retries", minRetries)
	v.SetDefault("chat.backoff_base", time.Second)
	v.SetDefault("chat.attachment_prompt", "请根据我上传的附件内容进行解答")
	v.SetDefault("cache.capacity", 100)
	v.SetDefault("cache.persist_key", "qa_cache")
	v.SetDefault("kafka.topic", "qa-exchanges")
	v.SetDefault("minio.url_expiry", time.Hour)
}

// clampRetries 把重试次数限制在 [3, 5] 区间内。
func clampRetries(n int) int {
	if n < minRetries {
		return minRetries
	}
	if n > maxRetries {
		return maxRetries
	}
	return n
}
