package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tapin/internal/app/tapin/entity"
	"tapin/internal/app/tapin/infrastructure"
	"tapin/pkg/logger"
	"tapin/pkg/metrics"

	"github.com/google/uuid"
)

// ListingService - коллекция листингов текущего фильтра плюс контроллер
// фильтра. Чтение течёт в одну сторону: фильтр -> выборка -> коллекция ->
// рендереры. Записи патчат коллекцию оптимистично, без повторной выборки.
//
// Каждая выборка захватывает поколение фильтра; ответ применяется только
// если поколение всё ещё текущее. Устаревший ответ отбрасывается - гонка
// "последний пришедший побеждает" при быстрой смене фильтров исключена.
type ListingService struct {
	backend   infrastructure.BackendAPI
	publisher infrastructure.MessagePublisher
	session   TokenSource
	notifier  *Notifier

	mu         sync.Mutex
	collection Collection
	filter     string
	query      string // канонический query string адресной строки
	generation uint64
}

// NewListingService создает сервис состояния листингов
func NewListingService(
	backend infrastructure.BackendAPI,
	publisher infrastructure.MessagePublisher,
	session TokenSource,
	notifier *Notifier,
) *ListingService {
	return &ListingService{
		backend:   backend,
		publisher: publisher,
		session:   session,
		notifier:  notifier,
		filter:    entity.CategoryAll,
	}
}

// Seed инициализирует фильтр из query string адресной строки и выполняет
// первую выборку: расшаренная или закладочная ссылка воспроизводит тот же
// отфильтрованный вид.
func (s *ListingService) Seed(ctx context.Context, rawQuery string) error {
	return s.SetFilter(ctx, FilterFromQuery(rawQuery))
}

// SetFilter атомарно для вызывающего: (a) переписывает параметр q
// адресной строки, (b) выполняет выборку коллекции под новый фильтр.
// Фильтрует сервер; клиент не фильтрует на своей стороне.
func (s *ListingService) SetFilter(ctx context.Context, category string) error {
	if category == "" {
		category = entity.CategoryAll
	}
	if category != entity.CategoryAll && !entity.IsValidCategory(category) {
		return ErrInvalidCategory
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.filter = category
	s.query = ApplyFilterToQuery(s.query, category)
	s.mu.Unlock()

	return s.fetch(ctx, gen, category)
}

// Refresh повторяет выборку под текущий фильтр (фоновая сверка)
func (s *ListingService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	category := s.filter
	s.mu.Unlock()

	return s.fetch(ctx, gen, category)
}

// fetch выполняет выборку и применяет результат, если поколение не ушло
// вперёд за время запроса
func (s *ListingService) fetch(ctx context.Context, gen uint64, category string) error {
	listings, err := s.backend.FetchListings(ctx, category)
	if err != nil {
		return err
	}

	metrics.ListingsFetches.WithLabelValues(category).Inc()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues("collection").Inc()
		logger.Debug().
			Str("category", category).
			Msg("discarding stale collection fetch result")
		return nil
	}
	s.collection.ReplaceAll(listings)
	s.mu.Unlock()

	s.notifier.Notify(ChangeCollection)
	return nil
}

// Create создает листинг от имени текущего пользователя и оптимистично
// ставит его в голову коллекции, не дожидаясь повторной выборки
func (s *ListingService) Create(ctx context.Context, req *entity.ListingRequest) (*entity.Listing, error) {
	token := s.session.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	if !req.PairedCoordinates() {
		return nil, ErrUnpairedCoordinates
	}

	listing, err := s.backend.CreateListing(ctx, token, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.collection.Prepend(*listing)
	s.mu.Unlock()

	metrics.OptimisticMutations.WithLabelValues("prepend").Inc()
	s.notifier.Notify(ChangeCollection)
	s.publishEvent(ctx, "LISTING_CREATED", listing.ID, 0)

	return listing, nil
}

// Update обновляет листинг и заменяет его запись в коллекции по id целиком.
// Право на изменение проверяет backend; несовпадение id в коллекции - no-op.
func (s *ListingService) Update(ctx context.Context, id int64, req *entity.ListingRequest) (*entity.Listing, error) {
	token := s.session.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	if !req.PairedCoordinates() {
		return nil, ErrUnpairedCoordinates
	}

	listing, err := s.backend.UpdateListing(ctx, token, id, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.collection.ReplaceByID(id, *listing)
	s.mu.Unlock()

	metrics.OptimisticMutations.WithLabelValues("replace").Inc()
	s.notifier.Notify(ChangeCollection)
	s.publishEvent(ctx, "LISTING_UPDATED", listing.ID, 0)

	return listing, nil
}

// Delete удаляет листинг и убирает его из коллекции
func (s *ListingService) Delete(ctx context.Context, id int64) error {
	token := s.session.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := s.backend.DeleteListing(ctx, token, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.collection.DeleteByID(id)
	s.mu.Unlock()

	metrics.OptimisticMutations.WithLabelValues("delete").Inc()
	s.notifier.Notify(ChangeCollection)
	s.publishEvent(ctx, "LISTING_DELETED", id, 0)

	return nil
}

// Listings возвращает копию видимой последовательности
func (s *ListingService) Listings() []entity.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Items()
}

// Filter возвращает активный фильтр
func (s *ListingService) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Query возвращает канонический query string адресной строки
func (s *ListingService) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// publishEvent отправляет событие активности в Kafka.
// Мутация уже применена, проблемы с Kafka не критичны - только лог.
func (s *ListingService) publishEvent(ctx context.Context, eventType string, listingID int64, rating int) {
	event := entity.ActivityEvent{
		EventType: eventType,
		EventID:   uuid.NewString(),
		ListingID: listingID,
		Rating:    rating,
		Timestamp: time.Now(),
	}
	if user := s.session.CurrentUser(); user != nil {
		event.UserID = user.ID
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal activity event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.EventID, data); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish activity event")
	}
}
