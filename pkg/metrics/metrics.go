package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (входящие запросы к шлюзу)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="tapin"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Backend API Метрики (исходящие вызовы к Tapin REST API)
// =============================================================================

// BackendRequestDuration - время вызова внешнего API
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of backend API calls in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"service", "operation"},
)

// BackendErrors - счётчик ошибок внешнего API (transport + non-2xx)
var BackendErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "backend_errors_total",
		Help: "Total number of backend API errors",
	},
	[]string{"service", "operation"},
)

// BackendRetries - повторные попытки вызова внешнего API
var BackendRetries = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "backend_retries_total",
		Help: "Total number of backend API retries",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики (персистентный credential)
// =============================================================================

// RedisOperationDuration - время операций Redis
var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // operation: get, set, del
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики (события активности)
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)

// =============================================================================
// Business Метрики (специфичные для Tapin)
// =============================================================================

// ListingsFetches - выполненные выборки коллекции по фильтру
// Labels: category ("All" для выборки без фильтра)
var ListingsFetches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "listings_fetches_total",
		Help: "Total number of listing collection fetches",
	},
	[]string{"category"},
)

// StaleResponsesDiscarded - ответы, отброшенные по generation-счётчику
// Labels: kind: collection, profile
var StaleResponsesDiscarded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "stale_responses_discarded_total",
		Help: "Total number of stale responses discarded by generation guard",
	},
	[]string{"kind"},
)

// OptimisticMutations - оптимистичные мутации коллекции
// Labels: operation: prepend, replace, delete
var OptimisticMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "optimistic_mutations_total",
		Help: "Total number of optimistic collection mutations",
	},
	[]string{"operation"},
)

// ReviewsSubmitted - отправленные отзывы
var ReviewsSubmitted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_submitted_total",
		Help: "Total number of reviews submitted",
	},
)

// ReviewsRating - распределение оценок
var ReviewsRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reviews_rating",
		Help:    "Distribution of submitted review ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// Signups - записи на листинги
var Signups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "listing_signups_total",
		Help: "Total number of listing sign-ups",
	},
	[]string{"status"}, // success, failed
)

// ProfileLookups - разрешения профиля по credential
var ProfileLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "profile_lookups_total",
		Help: "Total number of /me profile lookups",
	},
	[]string{"status"}, // success, failed, skipped_expired
)
