package infrastructure

import (
	"context"

	"tapin/internal/app/tapin/entity"
)

// BackendAPI - контракт внешнего Tapin REST API (коллаборатор, не в зоне
// ответственности шлюза). Выделен в интерфейс для подмены в тестах.
type BackendAPI interface {
	FetchListings(ctx context.Context, category string) ([]entity.Listing, error)
	CreateListing(ctx context.Context, token string, req *entity.ListingRequest) (*entity.Listing, error)
	UpdateListing(ctx context.Context, token string, id int64, req *entity.ListingRequest) (*entity.Listing, error)
	DeleteListing(ctx context.Context, token string, id int64) error
	SignUp(ctx context.Context, token string, id int64, message string) error

	FetchReviews(ctx context.Context, id int64) ([]entity.Review, error)
	FetchAverageRating(ctx context.Context, id int64) (*float64, error)
	CreateReview(ctx context.Context, token string, id int64, req *entity.CreateReviewRequest) (*entity.Review, error)

	Login(ctx context.Context, email, password string) (*entity.AuthResponse, error)
	Register(ctx context.Context, email, password string) (*entity.AuthResponse, error)
	ResetPassword(ctx context.Context, email string) error
	ResetPasswordConfirm(ctx context.Context, resetToken, password string) error
	Me(ctx context.Context, token string) (*entity.User, error)
}

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
