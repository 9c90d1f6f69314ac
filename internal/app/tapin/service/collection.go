package service

import "tapin/internal/app/tapin/entity"

// Collection - упорядоченная последовательность листингов текущего фильтра.
// Не потокобезопасна сама по себе: блокировкой владеет ListingService.
// Записи заменяются целиком, никогда не патчатся по полям.
type Collection struct {
	items []entity.Listing
}

// ReplaceAll полностью перезаписывает коллекцию результатом выборки,
// сохраняя порядок, выданный сервером
func (c *Collection) ReplaceAll(items []entity.Listing) {
	c.items = make([]entity.Listing, len(items))
	copy(c.items, items)
}

// Prepend ставит свежесозданный листинг первым в видимой последовательности,
// независимо от серверного порядка сортировки
func (c *Collection) Prepend(item entity.Listing) {
	c.items = append([]entity.Listing{item}, c.items...)
}

// ReplaceByID заменяет запись по id целиком; при отсутствии записи - no-op
func (c *Collection) ReplaceByID(id int64, item entity.Listing) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = item
			return
		}
	}
}

// DeleteByID удаляет не более одной записи с совпадающим id
func (c *Collection) DeleteByID(id int64) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items возвращает копию последовательности
func (c *Collection) Items() []entity.Listing {
	out := make([]entity.Listing, len(c.items))
	copy(out, c.items)
	return out
}

// Len возвращает размер коллекции
func (c *Collection) Len() int {
	return len(c.items)
}
