package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tapin/internal/app/tapin/entity"
	backendhttp "tapin/internal/app/tapin/infrastructure/http"
	"tapin/internal/app/tapin/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AppHandler обслуживает состояние приложения: коллекцию, фильтр,
// панель деталей и селектор вида
type AppHandler struct {
	sessions  *service.SessionService
	listings  *service.ListingService
	detail    *service.DetailService
	view      *service.ViewService
	validator *validator.Validate
}

func NewAppHandler(
	sessions *service.SessionService,
	listings *service.ListingService,
	detail *service.DetailService,
	view *service.ViewService,
) *AppHandler {
	return &AppHandler{
		sessions:  sessions,
		listings:  listings,
		detail:    detail,
		view:      view,
		validator: validator.New(),
	}
}

// GetState отдаёт снимок состояния приложения для рендера
func (h *AppHandler) GetState(c *gin.Context) {
	state := entity.StateResponse{
		User:     h.sessions.CurrentUser(),
		Filter:   h.listings.Filter(),
		Query:    h.listings.Query(),
		ViewMode: h.view.Mode(),
		Listings: h.listings.Listings(),
		Selected: h.detail.Selected(),
	}

	c.JSON(http.StatusOK, state)
}

// SetFilter меняет активный фильтр и перевыбирает коллекцию
func (h *AppHandler) SetFilter(c *gin.Context) {
	var req entity.SetFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.listings.SetFilter(c.Request.Context(), req.Category); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filter": h.listings.Filter(),
		"query":  h.listings.Query(),
	})
}

// CreateListing создает листинг; новая запись немедленно видна первой
func (h *AppHandler) CreateListing(c *gin.Context) {
	var req entity.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	listing, err := h.listings.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// UpdateListing обновляет листинг владельца
func (h *AppHandler) UpdateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req entity.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	listing, err := h.listings.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// DeleteListing удаляет листинг. Деструктивная операция требует явного
// подтверждения (?confirm=true) до отправки запроса; отмены нет.
func (h *AppHandler) DeleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if c.Query("confirm") != "true" {
		respondError(c, service.ErrConfirmationRequired)
		return
	}

	if err := h.listings.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Listing deleted successfully"})
}

// SelectListing открывает панель деталей: через карточку списка и через
// маркер карты сюда ведёт один и тот же контракт
func (h *AppHandler) SelectListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var selected *entity.Listing
	for _, l := range h.listings.Listings() {
		if l.ID == id {
			selected = &l
			break
		}
	}
	if selected == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	h.detail.Select(c.Request.Context(), *selected)

	detail, _ := h.detail.Snapshot()
	c.JSON(http.StatusOK, detail)
}

// CloseDetail закрывает панель деталей
func (h *AppHandler) CloseDetail(c *gin.Context) {
	h.detail.Close()
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Detail closed"})
}

// GetDetail отдаёт агрегат открытой панели деталей
func (h *AppHandler) GetDetail(c *gin.Context) {
	detail, ok := h.detail.Snapshot()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No listing selected"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// AddReview отправляет отзыв на выбранный листинг
func (h *AppHandler) AddReview(c *gin.Context) {
	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	review, err := h.detail.AddReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// SignUp записывает пользователя на выбранный листинг
func (h *AppHandler) SignUp(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if selected := h.detail.Selected(); selected == nil || selected.ID != id {
		respondError(c, service.ErrNoSelection)
		return
	}

	var req entity.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.detail.SignUp(c.Request.Context(), req.Message); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Successfully signed up! Owner will be notified."})
}

// SetView переключает режим отображения (list/map)
func (h *AppHandler) SetView(c *gin.Context) {
	var req entity.SetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.view.SetMode(req.Mode); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"view_mode": h.view.Mode()})
}

// SetLocation сохраняет разрешённую локацию пользователя для карты
func (h *AppHandler) SetLocation(c *gin.Context) {
	var req entity.SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	h.view.SetLocation(entity.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude})
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Location resolved"})
}

// GetMap отдаёт маркеры, центр и зум для рендера карты
func (h *AppHandler) GetMap(c *gin.Context) {
	c.JSON(http.StatusOK, h.view.Map(h.listings.Listings()))
}

// listingID разбирает :id из пути
func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return 0, false
	}
	return id, true
}

// respondError отображает ошибки бизнес-логики и backend в inline
// нефатальный JSON ответ; ничего не пробрасывается в глобальный handler
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, backendhttp.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired credential"})
	case errors.Is(err, service.ErrOwnReview), errors.Is(err, backendhttp.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, backendhttp.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrAlreadyReviewed), errors.Is(err, backendhttp.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCategory), errors.Is(err, service.ErrInvalidViewMode),
		errors.Is(err, service.ErrUnpairedCoordinates), errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, service.ErrNoSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Backend request failed"})
	}
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
