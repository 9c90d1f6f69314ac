package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки Tapin session gateway.
// Вся бизнес-логика и персистентность живут во внешнем Tapin REST API,
// поэтому конфигурируются только HTTP сервер, клиент API, Redis и Kafka.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Cron    CronConfig
	Log     LogConfig
}

// ServerConfig - настройки HTTP сервера шлюза
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// BackendConfig - настройки клиента внешнего Tapin API
type BackendConfig struct {
	BaseURL    string // Базовый URL API (по умолчанию http://127.0.0.1:5000)
	TimeoutSec int    // Таймаут HTTP запросов в секундах
	RPS        int    // Лимит исходящих запросов в секунду
}

// RedisConfig - настройки Redis для персистентного credential.
// Токен переживает перезапуск шлюза так же, как localStorage переживает
// перезагрузку страницы.
type RedisConfig struct {
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (опционально)
	DB       int    // Номер БД Redis (0-15)
}

// KafkaConfig - настройки Kafka для событий активности
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для LISTING_* и REVIEW_SUBMITTED событий
}

// CronConfig - расписание фоновой сверки с backend
type CronConfig struct {
	ReconcileSchedule string // cron-выражение (по умолчанию каждые 5 минут)
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level string // debug/info/warn/error
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	timeoutSec, err := strconv.Atoi(getEnv("BACKEND_TIMEOUT_SEC", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT_SEC value: %w", err)
	}

	rps, err := strconv.Atoi(getEnv("BACKEND_RPS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_RPS value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Backend: BackendConfig{
			BaseURL:    getEnv("BACKEND_API_URL", "http://127.0.0.1:5000"),
			TimeoutSec: timeoutSec,
			RPS:        rps,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "tapin_activity_events"),
		},
		Cron: CronConfig{
			ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 5m"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
