package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tapin/internal/app/tapin/entity"
	"tapin/internal/app/tapin/repository/mocks"
	"tapin/internal/app/tapin/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// testApp - полный стек хендлеров поверх моков backend и хранилища
type testApp struct {
	backend   *mocks.MockBackendAPI
	creds     *mocks.MockCredentialRepository
	publisher *mocks.MockMessagePublisher
	sessions  *service.SessionService
	listings  *service.ListingService
	router    *gin.Engine
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := new(mocks.MockBackendAPI)
	creds := new(mocks.MockCredentialRepository)
	publisher := new(mocks.MockMessagePublisher)

	notifier := service.NewNotifier()
	sessions := service.NewSessionService(backend, creds, notifier)
	listings := service.NewListingService(backend, publisher, sessions, notifier)
	detail := service.NewDetailService(backend, publisher, sessions, notifier)
	view := service.NewViewService(notifier)

	router := SetupRoutes(NewAuthHandler(sessions), NewAppHandler(sessions, listings, detail, view))

	return &testApp{
		backend:   backend,
		creds:     creds,
		publisher: publisher,
		sessions:  sessions,
		listings:  listings,
		router:    router,
	}
}

// authenticate открывает сессию через моки
func (a *testApp) authenticate(t *testing.T, userID int64) {
	t.Helper()
	a.creds.On("Save", mock.Anything, "test-token").Return(nil)
	a.backend.On("Me", mock.Anything, "test-token").
		Return(&entity.User{ID: userID, Email: "u@example.com"}, nil)
	a.sessions.SetCredential(context.Background(), "test-token")
}

func (a *testApp) seed(t *testing.T, listings []entity.Listing) {
	t.Helper()
	a.backend.On("FetchListings", mock.Anything, entity.CategoryAll).Return(listings, nil)
	require.NoError(t, a.listings.Seed(context.Background(), ""))
}

func (a *testApp) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// ===================== State Tests =====================

func TestGetState_Defaults(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{{ID: 1, Title: "Garden"}})

	w := app.request(http.MethodGet, "/app/state", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var state entity.StateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Nil(t, state.User)
	assert.Equal(t, entity.CategoryAll, state.Filter)
	assert.Equal(t, "", state.Query)
	assert.Equal(t, entity.ViewModeList, state.ViewMode)
	require.Len(t, state.Listings, 1)
	assert.Nil(t, state.Selected)
}

// ===================== Filter Tests =====================

func TestSetFilter_UpdatesQuery(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{{ID: 1}})

	app.backend.On("FetchListings", mock.Anything, entity.CategoryHealth).
		Return([]entity.Listing{{ID: 2}}, nil)

	w := app.request(http.MethodPut, "/app/filter", entity.SetFilterRequest{Category: entity.CategoryHealth})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, entity.CategoryHealth, resp["filter"])
	assert.Equal(t, "q=Health", resp["query"])
}

func TestSetFilter_UnknownCategoryRejected(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPut, "/app/filter", map[string]string{"category": "Gardening"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	app.backend.AssertNotCalled(t, "FetchListings", mock.Anything, mock.Anything)
}

// ===================== Listing Mutation Tests =====================

func TestCreateListing_Unauthenticated(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPost, "/app/listings", entity.ListingRequest{Title: "Garden"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "log in")
	app.backend.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateListing_Success(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)
	app.seed(t, []entity.Listing{{ID: 1}})

	app.backend.On("CreateListing", mock.Anything, "test-token", mock.AnythingOfType("*entity.ListingRequest")).
		Return(&entity.Listing{ID: 2, Title: "Garden", OwnerID: 7}, nil)
	app.publisher.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	w := app.request(http.MethodPost, "/app/listings", entity.ListingRequest{Title: "Garden"})

	require.Equal(t, http.StatusCreated, w.Code)

	// The new listing is immediately first in the visible state
	state := app.request(http.MethodGet, "/app/state", nil)
	var parsed entity.StateResponse
	require.NoError(t, json.Unmarshal(state.Body.Bytes(), &parsed))
	require.Len(t, parsed.Listings, 2)
	assert.Equal(t, int64(2), parsed.Listings[0].ID)
}

func TestCreateListing_MissingTitleRejected(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)

	w := app.request(http.MethodPost, "/app/listings", map[string]string{"description": "no title"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteListing_RequiresExplicitConfirmation(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)

	w := app.request(http.MethodDelete, "/app/listings/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirmation")
	app.backend.AssertNotCalled(t, "DeleteListing", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteListing_WithConfirmation(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)
	app.seed(t, []entity.Listing{{ID: 1}})

	app.backend.On("DeleteListing", mock.Anything, "test-token", int64(1)).Return(nil)
	app.publisher.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	w := app.request(http.MethodDelete, "/app/listings/1?confirm=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, app.listings.Listings())
}

func TestUpdateListing_InvalidID(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPut, "/app/listings/abc", entity.ListingRequest{Title: "X"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ===================== Detail Tests =====================

func TestSelectListing_AggregatesDetail(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{{ID: 1, Title: "Garden", OwnerID: 9}})

	avg := 4.5
	app.backend.On("FetchReviews", mock.Anything, int64(1)).
		Return([]entity.Review{{ID: 1, Rating: 5}, {ID: 2, Rating: 4}}, nil)
	app.backend.On("FetchAverageRating", mock.Anything, int64(1)).Return(&avg, nil)

	w := app.request(http.MethodPost, "/app/listings/1/select", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var detail entity.DetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.Listing.ID)
	assert.Len(t, detail.Reviews, 2)
	require.NotNil(t, detail.AverageRating)
	assert.Equal(t, 4.5, *detail.AverageRating)
	assert.False(t, detail.CanReview) // logged out
}

func TestSelectListing_NotInCollection(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{{ID: 1}})

	w := app.request(http.MethodPost, "/app/listings/42/select", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDetail_NothingSelected(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodGet, "/app/detail", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddReview_WithoutSelection(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)

	w := app.request(http.MethodPost, "/app/reviews", entity.CreateReviewRequest{Rating: 5})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddReview_OwnListingForbidden(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 9)
	app.seed(t, []entity.Listing{{ID: 1, OwnerID: 9}})

	app.backend.On("FetchReviews", mock.Anything, int64(1)).Return([]entity.Review{}, nil)
	app.backend.On("FetchAverageRating", mock.Anything, int64(1)).Return(nil, nil)

	require.Equal(t, http.StatusOK, app.request(http.MethodPost, "/app/listings/1/select", nil).Code)

	w := app.request(http.MethodPost, "/app/reviews", entity.CreateReviewRequest{Rating: 5})

	assert.Equal(t, http.StatusForbidden, w.Code)
	app.backend.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddReview_RatingOutOfRange(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPost, "/app/reviews", map[string]int{"rating": 6})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignUp_RequiresMatchingSelection(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)

	w := app.request(http.MethodPost, "/app/listings/1/signup", entity.SignUpRequest{Message: "hi"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	app.backend.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUp_Success(t *testing.T) {
	app := setupTestApp(t)
	app.authenticate(t, 7)
	app.seed(t, []entity.Listing{{ID: 1, OwnerID: 9}})

	app.backend.On("FetchReviews", mock.Anything, int64(1)).Return([]entity.Review{}, nil)
	app.backend.On("FetchAverageRating", mock.Anything, int64(1)).Return(nil, nil)
	app.backend.On("SignUp", mock.Anything, "test-token", int64(1), "count me in").Return(nil)
	app.publisher.On("PublishMessage", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	require.Equal(t, http.StatusOK, app.request(http.MethodPost, "/app/listings/1/select", nil).Code)

	w := app.request(http.MethodPost, "/app/listings/1/signup", entity.SignUpRequest{Message: "count me in"})

	assert.Equal(t, http.StatusOK, w.Code)
	app.backend.AssertExpectations(t)
}

// ===================== View Tests =====================

func TestSetView_SwitchesMode(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPut, "/app/view", entity.SetViewRequest{Mode: entity.ViewModeMap})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"view_mode":"map"`)
}

func TestSetView_InvalidMode(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodPut, "/app/view", map[string]string{"mode": "globe"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMap_LocationRequiredFirst(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{{ID: 1, Coordinates: &entity.Coordinates{Latitude: 37, Longitude: -122}}})

	w := app.request(http.MethodGet, "/app/map", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.MapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.LocationRequired)
}

func TestGetMap_AfterLocationResolved(t *testing.T) {
	app := setupTestApp(t)
	app.seed(t, []entity.Listing{
		{ID: 1, Coordinates: &entity.Coordinates{Latitude: 37, Longitude: -122}},
		{ID: 2}, // list-only
	})

	lat, lng := 36.0, -121.0
	loc := app.request(http.MethodPut, "/app/location", entity.SetLocationRequest{Latitude: &lat, Longitude: &lng})
	require.Equal(t, http.StatusOK, loc.Code)

	w := app.request(http.MethodGet, "/app/map", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.MapResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.LocationRequired)
	require.Len(t, resp.Markers, 1)
	assert.Equal(t, 13, resp.Zoom)
}

// ===================== Router Tests =====================

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t)

	w := app.request(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
