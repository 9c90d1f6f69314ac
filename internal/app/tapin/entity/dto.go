package entity

// ListingRequest - тело запроса на создание и обновление листинга.
// Координаты передаются парой: либо обе, либо ни одной.
type ListingRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Category    string   `json:"category" validate:"omitempty,oneof=Community Environment Education Health Animals"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
}

// PairedCoordinates проверяет инвариант пары: обе координаты или ни одной
func (r *ListingRequest) PairedCoordinates() bool {
	return (r.Latitude == nil) == (r.Longitude == nil)
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

// SignUpRequest - запись на листинг с опциональным сообщением владельцу
type SignUpRequest struct {
	Message string `json:"message" validate:"omitempty,max=500"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest - запрос на регистрацию.
// Подтверждение пароля проверяется локально, до обращения к API.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// ResetPasswordRequest - запрос на сброс пароля
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordConfirmRequest - установка нового пароля по токену сброса
type ResetPasswordConfirmRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// SetFilterRequest - смена активного фильтра
type SetFilterRequest struct {
	Category string `json:"category" validate:"omitempty,oneof=All Community Environment Education Health Animals"`
}

// SetViewRequest - переключение режима отображения
type SetViewRequest struct {
	Mode string `json:"mode" validate:"required,oneof=list map"`
}

// SetLocationRequest - локация пользователя для карты
type SetLocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// AuthResponse - ответ backend на login/register
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user,omitempty"`
}

// MeResponse - ответ backend на GET /me
type MeResponse struct {
	User *User `json:"user"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

// AverageRatingResponse - средний рейтинг листинга; null - отзывов нет
type AverageRatingResponse struct {
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int      `json:"review_count,omitempty"`
}

// StateResponse - снимок состояния приложения для рендера
type StateResponse struct {
	User     *User     `json:"user"`
	Filter   string    `json:"filter"`
	Query    string    `json:"query"` // канонический query string адресной строки
	ViewMode string    `json:"view_mode"`
	Listings []Listing `json:"listings"`
	Selected *Listing  `json:"selected,omitempty"`
}

// DetailResponse - агрегат панели деталей
type DetailResponse struct {
	Listing       Listing  `json:"listing"`
	Reviews       []Review `json:"reviews"`
	AverageRating *float64 `json:"average_rating"`
	CanReview     bool     `json:"can_review"`
}

// MapResponse - данные для рендера карты
type MapResponse struct {
	LocationRequired bool        `json:"location_required"`
	Markers          []Listing   `json:"markers"`
	Center           Coordinates `json:"center"`
	Zoom             int         `json:"zoom"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
