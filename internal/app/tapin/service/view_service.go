package service

import (
	"sync"

	"tapin/internal/app/tapin/entity"
)

// Центр карты по умолчанию, когда ни один листинг не mappable (Сан-Франциско)
var defaultCenter = entity.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

const (
	zoomSingle = 13 // один mappable листинг - ближе
	zoomMulti  = 10 // несколько или ноль - шире
)

// ViewService - селектор вида: список или карта одной и той же коллекции.
// Переключение - явный пользовательский жест без побочных эффектов.
// Карта дополнительно требует разрешённую локацию пользователя.
type ViewService struct {
	mu       sync.Mutex
	mode     string
	location *entity.Coordinates
	notifier *Notifier
}

// NewViewService создает селектор вида в начальном состоянии "list"
func NewViewService(notifier *Notifier) *ViewService {
	return &ViewService{
		mode:     entity.ViewModeList,
		notifier: notifier,
	}
}

// SetMode переключает режим отображения
func (s *ViewService) SetMode(mode string) error {
	if mode != entity.ViewModeList && mode != entity.ViewModeMap {
		return ErrInvalidViewMode
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.notifier.Notify(ChangeView)
	return nil
}

// Mode возвращает текущий режим отображения
func (s *ViewService) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetLocation сохраняет разрешённую локацию пользователя
func (s *ViewService) SetLocation(loc entity.Coordinates) {
	s.mu.Lock()
	s.location = &loc
	s.mu.Unlock()

	s.notifier.Notify(ChangeView)
}

// Map собирает данные для рендера карты. Пока локация пользователя не
// разрешена, вместо карты рендерится запрос локации. Маркеры - только
// mappable листинги; центр - среднее арифметическое их координат, зум
// ближе при ровно одном маркере.
func (s *ViewService) Map(listings []entity.Listing) entity.MapResponse {
	s.mu.Lock()
	location := s.location
	s.mu.Unlock()

	if location == nil {
		return entity.MapResponse{LocationRequired: true}
	}

	markers := make([]entity.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Mappable() {
			markers = append(markers, l)
		}
	}

	resp := entity.MapResponse{
		Markers: markers,
		Center:  defaultCenter,
		Zoom:    zoomMulti,
	}

	if len(markers) > 0 {
		var sumLat, sumLng float64
		for _, m := range markers {
			sumLat += m.Coordinates.Latitude
			sumLng += m.Coordinates.Longitude
		}
		resp.Center = entity.Coordinates{
			Latitude:  sumLat / float64(len(markers)),
			Longitude: sumLng / float64(len(markers)),
		}
	}
	if len(markers) == 1 {
		resp.Zoom = zoomSingle
	}

	return resp
}
