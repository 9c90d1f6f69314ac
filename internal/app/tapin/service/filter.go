package service

import (
	"net/url"

	"tapin/internal/app/tapin/entity"
)

// queryParam - имя параметра адресной строки, через который фильтр
// делает round-trip. Отсутствие параметра и литерал "All" эквивалентны.
const queryParam = "q"

// FilterFromQuery читает активный фильтр из query string адресной строки.
// Неизвестная категория трактуется как "All", чтобы расшаренная ссылка
// с опечаткой не ломала вид.
func FilterFromQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return entity.CategoryAll
	}

	q := values.Get(queryParam)
	if q == "" || q == entity.CategoryAll || !entity.IsValidCategory(q) {
		return entity.CategoryAll
	}
	return q
}

// ApplyFilterToQuery переписывает параметр q в query string: удаляет его
// для пустой категории и "All", иначе устанавливает в литерал категории.
// Остальные параметры сохраняются.
func ApplyFilterToQuery(rawQuery, category string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}

	if category == "" || category == entity.CategoryAll {
		values.Del(queryParam)
	} else {
		values.Set(queryParam, category)
	}

	return values.Encode()
}
