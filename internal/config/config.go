package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 通知服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	HTTP struct {
		Addr           string
		AllowedOrigins []string // CORS 白名单
	}

	// SMTP 邮件传输配置
	Email struct {
		Host       string
		Port       int
		User       string
		Password   string // 使用前由传输层去除空白字符
		SenderName string
	}

	// LINE Messaging API 配置
	Line struct {
		ChannelAccessToken string
		ChannelSecret      string
		APIBaseURL         string
	}

	// 派发配置
	Notify struct {
		SendTimeoutSeconds int    // 单次传输调用超时（秒）
		WebsiteURL         string // 通知里"查看详情"链接指向的前端地址

		// 自动触发：报警管线写入的 Redis Stream
		Stream struct {
			Name     string
			Group    string
			Consumer string
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（带默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "ecgmon")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3003")
	cfg.HTTP.AllowedOrigins = splitAndTrim(getEnv("ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:5173,http://localhost:5174"))

	cfg.Email.Host = getEnv("EMAIL_HOST", "smtp.gmail.com")
	cfg.Email.Port = getEnvInt("EMAIL_PORT", 587)
	cfg.Email.User = getEnv("EMAIL_USER", "")
	cfg.Email.Password = getEnv("EMAIL_PASSWORD", "")
	cfg.Email.SenderName = getEnv("EMAIL_SENDER_NAME", "ECG Monitoring System")

	cfg.Line.ChannelAccessToken = getEnv("LINE_CHANNEL_ACCESS_TOKEN", "")
	cfg.Line.ChannelSecret = getEnv("LINE_CHANNEL_SECRET", "")
	cfg.Line.APIBaseURL = getEnv("LINE_API_BASE_URL", "https://api.line.me")

	cfg.Notify.SendTimeoutSeconds = getEnvInt("NOTIFY_SEND_TIMEOUT_SECONDS", 15)
	cfg.Notify.WebsiteURL = getEnv("WEBSITE_URL", "https://your-domain.com")
	cfg.Notify.Stream.Name = getEnv("ALERT_STREAM", "ecg:alerts")
	cfg.Notify.Stream.Group = getEnv("ALERT_STREAM_GROUP", "ecg-notify")
	cfg.Notify.Stream.Consumer = getEnv("ALERT_STREAM_CONSUMER", "ecg-notify-1")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
