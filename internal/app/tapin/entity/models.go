package entity

import (
	"encoding/json"
	"time"
)

// Категории листингов - фиксированный набор, совпадает с backend API.
// CategoryAll - сентинел "без фильтра", в API не передаётся.
const (
	CategoryAll         = "All"
	CategoryCommunity   = "Community"
	CategoryEnvironment = "Environment"
	CategoryEducation   = "Education"
	CategoryHealth      = "Health"
	CategoryAnimals     = "Animals"
)

// Categories - список категорий, доступных для фильтрации (без сентинела)
var Categories = []string{
	CategoryCommunity,
	CategoryEnvironment,
	CategoryEducation,
	CategoryHealth,
	CategoryAnimals,
}

// IsValidCategory проверяет, что категория входит в фиксированный набор
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Coordinates - явная пара координат: либо обе присутствуют, либо ни одной.
// Половинчатая пара (только latitude или только longitude) отбрасывается
// на границе, где конструируется запись листинга.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Listing - основная сущность: волонтёрская возможность или локальная услуга.
// Вся запись приходит из внешнего Tapin API и заменяется целиком, никогда
// не патчится по полям.
type Listing struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"-"` // сериализуется плоскими latitude/longitude
	Category    string       `json:"category,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	OwnerID     int64        `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Mappable сообщает, можно ли показать листинг на карте
func (l *Listing) Mappable() bool {
	return l.Coordinates != nil
}

// listingJSON - плоское представление на проводе (API отдаёт latitude и
// longitude отдельными nullable полями)
type listingJSON struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnmarshalJSON декодирует плоские координаты в явную пару.
// Односторонняя пара считается отсутствующей - листинг остаётся
// валидным, но не mappable.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw listingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = raw.ID
	l.Title = raw.Title
	l.Description = raw.Description
	l.Location = raw.Location
	l.Category = raw.Category
	l.ImageURL = raw.ImageURL
	l.OwnerID = raw.OwnerID
	l.CreatedAt = raw.CreatedAt

	if raw.Latitude != nil && raw.Longitude != nil {
		l.Coordinates = &Coordinates{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
	} else {
		l.Coordinates = nil
	}

	return nil
}

// MarshalJSON сериализует пару обратно в плоские nullable поля
func (l Listing) MarshalJSON() ([]byte, error) {
	raw := listingJSON{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Location:    l.Location,
		Category:    l.Category,
		ImageURL:    l.ImageURL,
		OwnerID:     l.OwnerID,
		CreatedAt:   l.CreatedAt,
	}

	if l.Coordinates != nil {
		raw.Latitude = &l.Coordinates.Latitude
		raw.Longitude = &l.Coordinates.Longitude
	}

	return json.Marshal(raw)
}

// User - аутентифицированный пользователь из Auth части Tapin API
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Review - отзыв на листинг
type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	UserID    int64     `json:"user_id"`
	UserEmail string    `json:"user_email"` // денормализован для отображения
	Rating    int       `json:"rating"`     // Оценка от 1 до 5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Режимы отображения коллекции
const (
	ViewModeList = "list"
	ViewModeMap  = "map"
)

// ActivityEvent - событие активности пользователя, отправляется в Kafka
// после успешной оптимистичной мутации
type ActivityEvent struct {
	EventType string    `json:"event_type"` // LISTING_CREATED, LISTING_UPDATED, LISTING_DELETED, REVIEW_SUBMITTED, SIGNUP_SUBMITTED
	EventID   string    `json:"event_id"`
	ListingID int64     `json:"listing_id"`
	UserID    int64     `json:"user_id,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
