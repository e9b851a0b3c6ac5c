package config

import (
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Booking  BookingConfig
	Metrics  MetricsConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RabbitMQConfig はロックイベント送信先の設定
// URL が空ならイベントは送信しない
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// AuthConfig は呼び出し元の識別設定
// JWTSecret が空なら X-User-ID ヘッダーを信頼する
type AuthConfig struct {
	JWTSecret string
}

// BookingConfig は座席ロックとスケジュールの設定
type BookingConfig struct {
	LockTTL         time.Duration
	MaxSeatsPerLock int
	SweepInterval   time.Duration
	SweepBatchSize  int
	CatalogCacheTTL time.Duration
	ScheduleLockTTL time.Duration
	Timezone        string
}

// MetricsConfig は /metrics の Basic 認証設定
type MetricsConfig struct {
	User     string
	Password string
}

// Load は環境変数（と任意の config/config.yaml）から設定を読み込む
func Load() *Config {
	v := newViper()

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			ReadTimeout:     durationOr(v, "SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    durationOr(v, "SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: durationOr(v, "SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			DBName:         v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			MigrationsPath: v.GetString("MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Booking: BookingConfig{
			LockTTL:         durationOr(v, "SEAT_LOCK_TTL", 15*time.Minute),
			MaxSeatsPerLock: intOr(v, "MAX_SEATS_PER_LOCK", 10),
			SweepInterval:   durationOr(v, "LOCK_SWEEP_INTERVAL", time.Minute),
			SweepBatchSize:  intOr(v, "LOCK_SWEEP_BATCH_SIZE", 500),
			CatalogCacheTTL: durationOr(v, "SEAT_CATALOG_CACHE_TTL", 5*time.Minute),
			ScheduleLockTTL: durationOr(v, "SCHEDULE_LOCK_TTL", 10*time.Second),
			Timezone:        v.GetString("SCHEDULE_TIMEZONE"),
		},
		Metrics: MetricsConfig{
			User:     v.GetString("METRICS_USER"),
			Password: v.GetString("METRICS_PASSWORD"),
		},
	}

	// Railway 等の接続URL形式を優先する
	if raw := v.GetString("DATABASE_URL"); raw != "" {
		applyDatabaseURL(&cfg.Database, raw)
	}
	if raw := v.GetString("REDIS_URL"); raw != "" {
		applyRedisURL(&cfg.Redis, raw)
	}

	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cinema_reservation")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "seat_lock.events")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SCHEDULE_TIMEZONE", "UTC")
	v.SetDefault("METRICS_USER", "")
	v.SetDefault("METRICS_PASSWORD", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")

	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	// 設定ファイルは任意。無い場合や読めない場合は環境変数とデフォルト値を使う
	_ = v.ReadInConfig()
	return v
}

// Location は上映スケジュールのタイムゾーンを返す
func (c *BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はイベント送信が有効かを返す
func (c *RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

func applyDatabaseURL(c *DatabaseConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		c.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
	if name := trimSlash(u.Path); name != "" {
		c.DBName = name
	}
	c.SSLMode = "require"
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.SSLMode = mode
	}
}

func applyRedisURL(c *RedisConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
}

func trimSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}

func durationOr(v *viper.Viper, key string, def time.Duration) time.Duration {
	if d := v.GetDuration(key); d > 0 {
		return d
	}
	return def
}

func intOr(v *viper.Viper, key string, def int) int {
	if i := v.GetInt(key); i > 0 {
		return i
	}
	return def
}

// Enabled は /metrics に認証を要求するかを返す
func (c *MetricsConfig) Enabled() bool {
	return c.User != "" && c.Password != ""
}
