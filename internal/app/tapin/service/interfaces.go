package service

import "tapin/internal/app/tapin/entity"

// TokenSource отдаёт текущий credential и разрешённый по нему профиль.
// Реализуется SessionService; каждая аутентифицированная операция читает
// токен отсюда, а не хранит свою копию.
type TokenSource interface {
	Token() string
	CurrentUser() *entity.User
}
