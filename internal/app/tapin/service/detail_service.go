package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"tapin/internal/app/tapin/entity"
	"tapin/internal/app/tapin/infrastructure"
	backendhttp "tapin/internal/app/tapin/infrastructure/http"
	"tapin/pkg/logger"
	"tapin/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DetailService - агрегатор панели деталей: для одного выбранного листинга
// независимо запрашивает отзывы и средний рейтинг и локально пересчитывает
// среднее при добавлении отзыва, не дожидаясь ответа сервера.
type DetailService struct {
	backend   infrastructure.BackendAPI
	publisher infrastructure.MessagePublisher
	session   TokenSource
	notifier  *Notifier

	mu         sync.Mutex
	selected   *entity.Listing
	reviews    []entity.Review
	average    *float64
	generation uint64 // растёт при каждой смене выбора
}

// NewDetailService создает агрегатор деталей
func NewDetailService(
	backend infrastructure.BackendAPI,
	publisher infrastructure.MessagePublisher,
	session TokenSource,
	notifier *Notifier,
) *DetailService {
	return &DetailService{
		backend:   backend,
		publisher: publisher,
		session:   session,
		notifier:  notifier,
	}
}

// Select открывает панель деталей для листинга. Отзывы и средний рейтинг
// запрашиваются конкурентно и независимо: сбой одного не блокирует другой,
// сбои логируются, секция просто остаётся пустой.
// Выбор через маркер карты и через карточку списка идёт одним путём.
func (s *DetailService) Select(ctx context.Context, listing entity.Listing) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.selected = &listing
	s.reviews = nil
	s.average = nil
	s.mu.Unlock()

	s.notifier.Notify(ChangeDetail)
	s.load(ctx, gen, listing.ID)
}

// load выполняет обе выборки и применяет их, если выбор не сменился
func (s *DetailService) load(ctx context.Context, gen uint64, listingID int64) {
	var (
		reviews []entity.Review
		average *float64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rs, err := s.backend.FetchReviews(gctx, listingID)
		if err != nil {
			logger.Warn().Err(err).Int64("listing_id", listingID).Msg("failed to fetch reviews")
			return nil
		}
		reviews = rs
		return nil
	})

	g.Go(func() error {
		avg, err := s.backend.FetchAverageRating(gctx, listingID)
		if err != nil {
			logger.Warn().Err(err).Int64("listing_id", listingID).Msg("failed to fetch average rating")
			return nil
		}
		average = avg
		return nil
	})

	// ошибки проглочены внутри горутин, Wait всегда возвращает nil
	_ = g.Wait()

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues("detail").Inc()
		return
	}
	s.reviews = reviews
	s.average = average
	s.mu.Unlock()

	s.notifier.Notify(ChangeDetail)
}

// Close закрывает панель деталей
func (s *DetailService) Close() {
	s.mu.Lock()
	s.generation++
	s.selected = nil
	s.reviews = nil
	s.average = nil
	s.mu.Unlock()

	s.notifier.Notify(ChangeDetail)
}

// AddReview отправляет отзыв на выбранный листинг и применяет его
// оптимистично: новый отзыв встаёт в голову последовательности, среднее
// пересчитывается из оценок, как они стояли ДО вставки - только что
// добавленный отзыв не должен попасть в сумму дважды.
//
// Гейты до любого сетевого запроса: выбор открыт, пользователь
// аутентифицирован, пользователь не владелец листинга.
func (s *DetailService) AddReview(ctx context.Context, req *entity.CreateReviewRequest) (*entity.Review, error) {
	s.mu.Lock()
	selected := s.selected
	gen := s.generation
	s.mu.Unlock()

	if selected == nil {
		return nil, ErrNoSelection
	}

	token := s.session.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	user := s.session.CurrentUser()
	if user != nil && selected.OwnerID == user.ID {
		return nil, ErrOwnReview
	}

	review, err := s.backend.CreateReview(ctx, token, selected.ID, req)
	if err != nil {
		if errors.Is(err, backendhttp.ErrConflict) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}

	s.mu.Lock()
	if gen != s.generation {
		// выбор сменился за время запроса: отзыв создан, но в чужую
		// панель он не вставляется
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues("detail").Inc()
		logger.Debug().Int64("listing_id", selected.ID).Msg("selection changed during review submit, skipping optimistic apply")
	} else {
		// пересчёт по пре-вставочной последовательности
		newAverage := recomputeAverage(s.reviews, review.Rating)
		s.average = &newAverage
		s.reviews = append([]entity.Review{*review}, s.reviews...)
		s.mu.Unlock()
		s.notifier.Notify(ChangeDetail)
	}

	metrics.ReviewsSubmitted.Inc()
	metrics.ReviewsRating.Observe(float64(review.Rating))
	s.publishEvent(ctx, "REVIEW_SUBMITTED", selected.ID, review.Rating)

	return review, nil
}

// recomputeAverage считает новое среднее из прежних оценок и новой:
// для пустой последовательности среднее равно новой оценке
func recomputeAverage(previous []entity.Review, newRating int) float64 {
	if len(previous) == 0 {
		return float64(newRating)
	}

	sum := newRating
	for _, r := range previous {
		sum += r.Rating
	}
	return float64(sum) / float64(len(previous)+1)
}

// SignUp записывает текущего пользователя на выбранный листинг
func (s *DetailService) SignUp(ctx context.Context, message string) error {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	if selected == nil {
		return ErrNoSelection
	}

	token := s.session.Token()
	if token == "" {
		return ErrNotAuthenticated
	}

	if err := s.backend.SignUp(ctx, token, selected.ID, message); err != nil {
		metrics.Signups.WithLabelValues("failed").Inc()
		return err
	}

	metrics.Signups.WithLabelValues("success").Inc()
	s.publishEvent(ctx, "SIGNUP_SUBMITTED", selected.ID, 0)
	return nil
}

// Reconcile заново запрашивает отзывы и авторитетное среднее для открытого
// выбора: оптимистичное значение - UI-only transient, сервер всегда
// перекрывает его при следующей выборке
func (s *DetailService) Reconcile(ctx context.Context) {
	s.mu.Lock()
	selected := s.selected
	gen := s.generation
	s.mu.Unlock()

	if selected == nil {
		return
	}

	s.load(ctx, gen, selected.ID)
}

// Selected возвращает открытый листинг или nil
func (s *DetailService) Selected() *entity.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Snapshot возвращает агрегат панели для рендера
func (s *DetailService) Snapshot() (*entity.DetailResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return nil, false
	}

	reviews := make([]entity.Review, len(s.reviews))
	copy(reviews, s.reviews)

	user := s.session.CurrentUser()
	canReview := user != nil && user.ID != s.selected.OwnerID

	return &entity.DetailResponse{
		Listing:       *s.selected,
		Reviews:       reviews,
		AverageRating: s.average,
		CanReview:     canReview,
	}, true
}

func (s *DetailService) publishEvent(ctx context.Context, eventType string, listingID int64, rating int) {
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
