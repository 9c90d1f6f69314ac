package service

import "sync"

// Виды изменений состояния приложения
const (
	ChangeSession    = "session"
	ChangeCollection = "collection"
	ChangeDetail     = "detail"
	ChangeView       = "view"
)

// Change - уведомление об изменении одного поля состояния приложения.
// У каждого поля единственный писатель; подписчики (рендереры) получают
// уведомление после каждой применённой мутации.
type Change struct {
	Kind string
}

// Notifier - механизм наблюдателя, разделяемый всеми сервисами состояния.
// Доставка не блокирующая: медленный подписчик теряет уведомления, но
// никогда не задерживает писателя.
type Notifier struct {
	mu   sync.Mutex
	subs []chan Change
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe возвращает канал уведомлений с небольшим буфером
func (n *Notifier) Subscribe() <-chan Change {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Change, 16)
	n.subs = append(n.subs, ch)
	return ch
}

// Notify рассылает изменение всем подписчикам
func (n *Notifier) Notify(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- Change{Kind: kind}:
		default:
		}
	}
}
