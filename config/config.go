package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	HTTP      ServerConfig
	GRPC      ServerConfig
	MySQL     MySQLConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Log       LogConfig
	Yodl      YodlConfig
	Probe     ProbeConfig
	Booking   BookingConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

// MySQLConfig is optional; without a DSN webhook deliveries are not persisted.
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DeliveryTTL time.Duration
}

type KafkaConfig struct {
	Brokers      []string
	SettledTopic string
}

type LogConfig struct {
	Level string
}

type YodlConfig struct {
	Receiver       string
	OriginURL      string
	IndexerURL     string
	IndexerTimeout time.Duration
	SigningAddress string
}

type ProbeConfig struct {
	URL     string
	Timeout time.Duration
}

type BookingConfig struct {
	Currency        string
	InvoiceCurrency string
	FullPrice       float64
	DiscountPrice   float64
	DiscountTag     string
	SlotsFile       string
	HistoryPageSize int
	RedirectURL     string
}

type RateLimitConfig struct {
	WebhookPerSecond float64
	WebhookBurst     int
}

type JobsConfig struct {
	ConflictScanInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	receiver := strings.TrimSpace(os.Getenv("YODL_RECEIVER"))
	if receiver == "" {
		return nil, errors.New("YODL_RECEIVER environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "bike-bookings-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             getEnv("MYSQL_DSN", ""),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", ""),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getIntEnv("REDIS_DB", 0),
			DeliveryTTL: getMinutesEnv("REDIS_DELIVERY_TTL_MINUTES", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:      getListEnv("KAFKA_BROKERS"),
			SettledTopic: getEnv("KAFKA_SETTLED_TOPIC", "bookings.payment-settled"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Yodl: YodlConfig{
			Receiver:       receiver,
			OriginURL:      getEnv("YODL_ORIGIN_URL", "https://yodl.me"),
			IndexerURL:     getEnv("YODL_INDEXER_URL", "https://tx.yodl.me"),
			IndexerTimeout: getSecondsEnv("YODL_INDEXER_TIMEOUT_SECONDS", 10*time.Second),
			SigningAddress: getEnv("YODL_SIGNING_ADDRESS", ""),
		},
		Probe: ProbeConfig{
			URL:     getEnv("PROBE_URL", ""),
			Timeout: getMillisecondsEnv("PROBE_TIMEOUT_MS", 3*time.Second),
		},
		Booking: BookingConfig{
			Currency:        getEnv("BOOKING_CURRENCY", "USDC"),
			InvoiceCurrency: getEnv("BOOKING_INVOICE_CURRENCY", "USD"),
			FullPrice:       getFloatEnv("BOOKING_FULL_PRICE", 15),
			DiscountPrice:   getFloatEnv("BOOKING_DISCOUNT_PRICE", 5),
			DiscountTag:     getEnv("BOOKING_DISCOUNT_TAG", "vpn"),
			SlotsFile:       getEnv("BOOKING_SLOTS_FILE", ""),
			HistoryPageSize: getIntEnv("BOOKING_HISTORY_PAGE_SIZE", 200),
			RedirectURL:     getEnv("BOOKING_REDIRECT_URL", ""),
		},
		RateLimit: RateLimitConfig{
			WebhookPerSecond: getFloatEnv("RATE_LIMIT_WEBHOOK_PER_SECOND", 20),
			WebhookBurst:     getIntEnv("RATE_LIMIT_WEBHOOK_BURST", 40),
		},
		Jobs: JobsConfig{
			ConflictScanInterval: getMinutesEnv("BOOKINGS_CONFLICT_SCAN_INTERVAL_MINUTES", 10*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getMillisecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
