package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"tapin/internal/app/tapin/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===================== Login Tests =====================

func TestLogin_Success(t *testing.T) {
	// Arrange
	app := setupTestApp(t)

	app.backend.On("Login", mock.Anything, "u@example.com", "secret").
		Return(&entity.AuthResponse{AccessToken: "test-token"}, nil)
	app.creds.On("Save", mock.Anything, "test-token").Return(nil)
	app.backend.On("Me", mock.Anything, "test-token").
		Return(&entity.User{ID: 7, Email: "u@example.com"}, nil)

	// Act
	w := app.request(http.MethodPost, "/auth/login",
		entity.LoginRequest{Email: "u@example.com", Password: "secret"})

	// Assert
	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.Equal(t, "test-token", app.sessions.Token())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	app := setupTestApp(t)

	app.backend.On("Login", mock.Anything, "u@example.com", "wrong").
		Return(nil, errors.New("invalid credentials"))

	w := app.request(http.MethodPost, "/auth/login",
		entity.LoginRequest{Email: "u@example.com", Password: "wrong"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "", app.sessions.Token())
}

func TestLogin_InvalidEmailRejected(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPost, "/auth/login",
		map[string]string{"email": "not-an-email", "password": "secret"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	app.backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

// ===================== Register Tests =====================

func TestRegister_Success(t *testing.T) {
	app := setupTestApp(t)

	app.backend.On("Register", mock.Anything, "u@example.com", "secret7").
		Return(&entity.AuthResponse{AccessToken: "test-token"}, nil)
	app.creds.On("Save", mock.Anything, "test-token").Return(nil)
	app.backend.On("Me", mock.Anything, "test-token").
		Return(&entity.User{ID: 7}, nil)

	w := app.request(http.MethodPost, "/auth/register", entity.RegisterRequest{
		Email:           "u@example.com",
		Password:        "secret7",
		PasswordConfirm: "secret7",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "test-token", app.sessions.Token())
}

func TestRegister_PasswordMismatchRejectedLocally(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPost, "/auth/register", entity.RegisterRequest{
		Email:           "u@example.com",
		Password:        "secret7",
		PasswordConfirm: "different",
	})

	// Confirmation is checked before the request leaves the process
	assert.Equal(t, http.StatusBadRequest, w.Code)
	app.backend.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
}

// ===================== Me / Logout Tests =====================

func TestMe_LoggedOut(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodGet, "/auth/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_LoggedIn(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)

	w := app.request(http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u@example.com")
}

func TestLogout_ClearsSession(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)
	app.creds.On("Delete", mock.Anything).Return(nil)

	w := app.request(http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", app.sessions.Token())
	assert.Equal(t, http.StatusUnauthorized, app.request(http.MethodGet, "/auth/me", nil).Code)
}

// ===================== Reset Password Tests =====================

func TestResetPassword_Proxied(t *testing.T) {
	app := setupTestApp(t)

	app.backend.On("ResetPassword", mock.Anything, "u@example.com").Return(nil)

	w := app.request(http.MethodPost, "/auth/reset-password",
		entity.ResetPasswordRequest{Email: "u@example.com"})

	assert.Equal(t, http.StatusOK, w.Code)
	app.backend.AssertExpectations(t)
}

func TestResetPasswordConfirm_Proxied(t *testing.T) {
	app := setupTestApp(t)

	app.backend.On("ResetPasswordConfirm", mock.Anything, "reset-token-123", "newpass7").Return(nil)

	w := app.request(http.MethodPost, "/auth/reset-password/confirm/reset-token-123",
		entity.ResetPasswordConfirmRequest{Password: "newpass7"})

	assert.Equal(t, http.StatusOK, w.Code)
	app.backend.AssertExpectations(t)
}
