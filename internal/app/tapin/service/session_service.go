package service

import (
	"context"
	"errors"
	"sync"

	"tapin/internal/app/tapin/entity"
	"tapin/internal/app/tapin/infrastructure"
	"tapin/internal/app/tapin/repository"
	"tapin/internal/app/tapin/util"
	"tapin/pkg/logger"
	"tapin/pkg/metrics"
)

// SessionService - хранилище сессии: credential и разрешённый по нему
// профиль. Credential персистится и переживает перезапуск; профиль
// разрешается заново через GET /me при каждой смене credential.
//
// Сбой разрешения профиля (сеть, non-2xx) никогда не всплывает наружу:
// истёкший или невалидный токен тихо откатывает в разлогиненное
// состояние вместо того, чтобы прерывать пользователя.
type SessionService struct {
	backend  infrastructure.BackendAPI
	creds    repository.CredentialRepository
	notifier *Notifier

	mu         sync.Mutex
	token      string
	user       *entity.User
	generation uint64 // растёт при каждой смене credential
}

// NewSessionService создает новый сервис сессии
func NewSessionService(backend infrastructure.BackendAPI, creds repository.CredentialRepository, notifier *Notifier) *SessionService {
	return &SessionService{
		backend:  backend,
		creds:    creds,
		notifier: notifier,
	}
}

// Restore поднимает сохранённый credential при старте и разрешает профиль.
// Отсутствие сохранённого токена - нормальный разлогиненный старт.
func (s *SessionService) Restore(ctx context.Context) {
	token, err := s.creds.Load(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn().Err(err).Msg("failed to restore credential")
		}
		return
	}

	s.apply(ctx, token)
}

// SetCredential устанавливает новый credential. Пустая строка - logout:
// персистентный токен удаляется, профиль сбрасывается немедленно, запрос
// к /me не выполняется.
func (s *SessionService) SetCredential(ctx context.Context, token string) {
	if token == "" {
		if err := s.creds.Delete(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to clear persisted credential")
		}

		s.mu.Lock()
		s.generation++
		s.token = ""
		s.user = nil
		s.mu.Unlock()

		s.notifier.Notify(ChangeSession)
		return
	}

	if err := s.creds.Save(ctx, token); err != nil {
		// сессия этого процесса живёт, токен просто не переживёт перезапуск
		logger.Warn().Err(err).Msg("failed to persist credential")
	}

	s.apply(ctx, token)
}

// apply присваивает токен и разрешает профиль. Результат применяется
// только если за время запроса credential не сменился снова: у поля
// user единственный писатель - самое свежее разрешение.
func (s *SessionService) apply(ctx context.Context, token string) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.token = token
	s.mu.Unlock()

	// истёкший JWT не имеет смысла отправлять в /me
	if util.CredentialExpired(token) {
		metrics.ProfileLookups.WithLabelValues("skipped_expired").Inc()
		logger.Debug().Msg("credential expired, skipping profile lookup")
		s.applyUser(gen, nil)
		return
	}

	user, err := s.backend.Me(ctx, token)
	if err != nil {
		metrics.ProfileLookups.WithLabelValues("failed").Inc()
		logger.Warn().Err(err).Msg("profile lookup failed, falling back to logged-out state")
		s.applyUser(gen, nil)
		return
	}

	metrics.ProfileLookups.WithLabelValues("success").Inc()
	s.applyUser(gen, user)
}

func (s *SessionService) applyUser(gen uint64, user *entity.User) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		metrics.StaleResponsesDiscarded.WithLabelValues("profile").Inc()
		logger.Debug().Msg("discarding stale profile lookup result")
		return
	}
	s.user = user
	s.mu.Unlock()

	s.notifier.Notify(ChangeSession)
}

// Login выполняет вход через backend и устанавливает полученный credential.
// Профиль разрешается тем же путём, что и при любой смене credential.
func (s *SessionService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.SetCredential(ctx, resp.AccessToken)
	return s.CurrentUser(), nil
}

// Register регистрирует пользователя и сразу логинит его
func (s *SessionService) Register(ctx context.Context, email, password string) (*entity.User, error) {
	resp, err := s.backend.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.SetCredential(ctx, resp.AccessToken)
	return s.CurrentUser(), nil
}

// Logout очищает credential и профиль
func (s *SessionService) Logout(ctx context.Context) {
	s.SetCredential(ctx, "")
}

// ResetPassword проксирует запрос на сброс пароля
func (s *SessionService) ResetPassword(ctx context.Context, email string) error {
	return s.backend.ResetPassword(ctx, email)
}

// ResetPasswordConfirm устанавливает новый пароль по токену сброса
func (s *SessionService) ResetPasswordConfirm(ctx context.Context, resetToken, password string) error {
	return s.backend.ResetPasswordConfirm(ctx, resetToken, password)
}

// Token возвращает текущий credential; пустая строка - разлогинен
func (s *SessionService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUser возвращает разрешённый профиль или nil
func (s *SessionService) CurrentUser() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}
