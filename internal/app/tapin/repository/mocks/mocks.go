package mocks

import (
	"context"

	"tapin/internal/app/tapin/entity"

	"github.com/stretchr/testify/mock"
)

// MockCredentialRepository мок для CredentialRepository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) Save(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockCredentialRepository) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialRepository) Delete(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBackendAPI мок для infrastructure.BackendAPI
type MockBackendAPI struct {
	mock.Mock
}

func (m *MockBackendAPI) FetchListings(ctx context.Context, category string) ([]entity.Listing, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Listing), args.Error(1)
}

func (m *MockBackendAPI) CreateListing(ctx context.Context, token string, req *entity.ListingRequest) (*entity.Listing, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockBackendAPI) UpdateListing(ctx context.Context, token string, id int64, req *entity.ListingRequest) (*entity.Listing, error) {
	args := m.Called(ctx, token, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Listing), args.Error(1)
}

func (m *MockBackendAPI) DeleteListing(ctx context.Context, token string, id int64) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockBackendAPI) SignUp(ctx context.Context, token string, id int64, message string) error {
	args := m.Called(ctx, token, id, message)
	return args.Error(0)
}

func (m *MockBackendAPI) FetchReviews(ctx context.Context, id int64) ([]entity.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Review), args.Error(1)
}

func (m *MockBackendAPI) FetchAverageRating(ctx context.Context, id int64) (*float64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockBackendAPI) CreateReview(ctx context.Context, token string, id int64, req *entity.CreateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, token, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockBackendAPI) Login(ctx context.Context, email, password string) (*entity.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockBackendAPI) Register(ctx context.Context, email, password string) (*entity.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockBackendAPI) ResetPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockBackendAPI) ResetPasswordConfirm(ctx context.Context, resetToken, password string) error {
	args := m.Called(ctx, resetToken, password)
	return args.Error(0)
}

func (m *MockBackendAPI) Me(ctx context.Context, token string) (*entity.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
