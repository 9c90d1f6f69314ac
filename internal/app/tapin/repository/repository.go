package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// CredentialRepository - персистентное хранилище access токена.
// Единственный разделяемый между компонентами ресурс: каждая запись -
// терминальное присваивание, никогда не read-modify-write.
type CredentialRepository interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}
