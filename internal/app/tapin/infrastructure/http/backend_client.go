package http

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tapin/internal/app/tapin/entity"
	"tapin/pkg/metrics"

	"golang.org/x/time/rate"
)

const serviceName = "tapin"

var (
	// Ошибки уровня API для обработки в service слое
	ErrNotFound     = errors.New("backend: not found")
	ErrUnauthorized = errors.New("backend: unauthorized")
	ErrForbidden    = errors.New("backend: forbidden")
	ErrConflict     = errors.New("backend: conflict")
)

// BackendClient - клиент внешнего Tapin REST API.
// Единственный источник листингов, отзывов и профилей: вся персистентность
// живёт за этим API, шлюз только вызывает его и кэширует результаты.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewBackendClient создает новый клиент Tapin API с клиентским rate limit
func NewBackendClient(baseURL string, timeoutSec, rps int) *BackendClient {
	if rps <= 0 {
		rps = 10
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// FetchListings получает коллекцию листингов, опционально отфильтрованную
// по категории. Фильтрует сервер: клиент только передаёт q и заменяет
// коллекцию целиком.
func (c *BackendClient) FetchListings(ctx context.Context, category string) ([]entity.Listing, error) {
	path := "/listings"
	if category != "" && category != entity.CategoryAll {
		path += "?q=" + url.QueryEscape(category)
	}

	var listings []entity.Listing
	if err := c.do(ctx, "fetch_listings", http.MethodGet, path, "", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateListing создает листинг от имени аутентифицированного пользователя
func (c *BackendClient) CreateListing(ctx context.Context, token string, req *entity.ListingRequest) (*entity.Listing, error) {
	var listing entity.Listing
	if err := c.do(ctx, "create_listing", http.MethodPost, "/listings", token, req, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing обновляет листинг; backend возвращает запись целиком
func (c *BackendClient) UpdateListing(ctx context.Context, token string, id int64, req *entity.ListingRequest) (*entity.Listing, error) {
	var listing entity.Listing
	path := fmt.Sprintf("/listings/%d", id)
	if err := c.do(ctx, "update_listing", http.MethodPut, path, token, req, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// DeleteListing удаляет листинг владельца
func (c *BackendClient) DeleteListing(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/listings/%d", id)
	return c.do(ctx, "delete_listing", http.MethodDelete, path, token, nil, nil)
}

// SignUp записывает пользователя на листинг с опциональным сообщением владельцу
func (c *BackendClient) SignUp(ctx context.Context, token string, id int64, message string) error {
	path := fmt.Sprintf("/listings/%d/signup", id)
	body := map[string]string{"message": message}
	return c.do(ctx, "signup", http.MethodPost, path, token, body, nil)
}

// FetchReviews получает отзывы листинга
func (c *BackendClient) FetchReviews(ctx context.Context, id int64) ([]entity.Review, error) {
	var resp entity.ReviewListResponse
	path := fmt.Sprintf("/listings/%d/reviews", id)
	if err := c.do(ctx, "fetch_reviews", http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}

// FetchAverageRating получает авторитетный средний рейтинг; nil - отзывов нет
func (c *BackendClient) FetchAverageRating(ctx context.Context, id int64) (*float64, error) {
	var resp entity.AverageRatingResponse
	path := fmt.Sprintf("/listings/%d/average-rating", id)
	if err := c.do(ctx, "fetch_average_rating", http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.AverageRating, nil
}

// CreateReview отправляет отзыв. Повторный отзыв того же пользователя
// backend отклоняет - клиент получает ErrConflict с сообщением.
func (c *BackendClient) CreateReview(ctx context.Context, token string, id int64, req *entity.CreateReviewRequest) (*entity.Review, error) {
	var review entity.Review
	path := fmt.Sprintf("/listings/%d/reviews", id)
	if err := c.do(ctx, "create_review", http.MethodPost, path, token, req, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Login выполняет вход и возвращает access токен с профилем
func (c *BackendClient) Login(ctx context.Context, email, password string) (*entity.AuthResponse, error) {
	var resp entity.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "login", http.MethodPost, "/login", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует пользователя
func (c *BackendClient) Register(ctx context.Context, email, password string) (*entity.AuthResponse, error) {
	var resp entity.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "register", http.MethodPost, "/register", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword инициирует сброс пароля по email
func (c *BackendClient) ResetPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "reset_password", http.MethodPost, "/reset-password", "", body, nil)
}

// ResetPasswordConfirm устанавливает новый пароль по токену сброса
func (c *BackendClient) ResetPasswordConfirm(ctx context.Context, resetToken, password string) error {
	body := map[string]string{"password": password}
	path := "/reset-password/confirm/" + url.PathEscape(resetToken)
	return c.do(ctx, "reset_password_confirm", http.MethodPost, path, "", body, nil)
}

// Me разрешает профиль по credential
func (c *BackendClient) Me(ctx context.Context, token string) (*entity.User, error) {
	var resp entity.MeResponse
	if err := c.do(ctx, "me", http.MethodGet, "/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("me response without user")
	}
	return resp.User, nil
}

// do выполняет запрос с rate limit, ретраями на 429/5xx и декодированием
// JSON. Структурированная ошибка {error} из тела превращается в сообщение.
func (c *BackendClient) do(ctx context.Context, op, method, path, token string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	timer := metrics.NewBackendTimer(serviceName, op)
	defer timer.ObserveDuration()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < 4; attempt++ {
		// запрос строится заново на каждую попытку
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.RecordBackendError(serviceName, op)
			lastErr = fmt.Errorf("failed to execute request: %w", err)
			if attempt < 3 && sleepCtx(ctx, backoff(attempt)) {
				metrics.RecordBackendRetry(serviceName, op)
				continue
			}
			return lastErr
		}

		retryable, err := c.handleResponse(resp, out)
		if err == nil {
			return nil
		}
		if !retryable {
			metrics.RecordBackendError(serviceName, op)
			return err
		}

		metrics.RecordBackendError(serviceName, op)
		lastErr = err
		wait := retryAfter(resp)
		if wait == 0 {
			wait = backoff(attempt)
		}
		if attempt < 3 && sleepCtx(ctx, wait) {
			metrics.RecordBackendRetry(serviceName, op)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return lastErr
	}

	return lastErr
}

// handleResponse декодирует successful ответ либо возвращает
// (retryable, error) по статусу. Тело всегда закрывается здесь.
func (c *BackendClient) handleResponse(resp *http.Response, out any) (bool, error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return false, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: %s", ErrNotFound, apiErrorMessage(resp.Body))

	case resp.StatusCode == http.StatusUnauthorized:
		return false, fmt.Errorf("%w: %s", ErrUnauthorized, apiErrorMessage(resp.Body))

	case resp.StatusCode == http.StatusForbidden:
		return false, fmt.Errorf("%w: %s", ErrForbidden, apiErrorMessage(resp.Body))

	case resp.StatusCode == http.StatusConflict:
		return false, fmt.Errorf("%w: %s", ErrConflict, apiErrorMessage(resp.Body))

	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusInternalServerError,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return true, fmt.Errorf("backend returned status %d", resp.StatusCode)

	default:
		msg := apiErrorMessage(resp.Body)
		// backend отдаёт 400 с "you have already reviewed this listing" -
		// для клиента это конфликт, а не ошибка валидации
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(msg, "already reviewed") {
			return false, fmt.Errorf("%w: %s", ErrConflict, msg)
		}
		return false, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, msg)
	}
}

// apiErrorMessage извлекает message из структурированного {error} payload
func apiErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return "no error details"
	}

	var payload entity.ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

// sleepCtx ждёт d или возвращает false, если ctx отменён
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter разбирает заголовок Retry-After (секунды или HTTP-дата)
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff - экспоненциальная задержка с джиттером до +50%
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<attempt) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
