package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event — любое событие в системе.
type Event interface {
	Name() string
}

// Listener — обработчик событий.
type Listener func(ctx context.Context, event Event) error

// Bus — внутрипроцессная шина событий. Каждый слушатель вызывается
// в отдельной горутине: публикация никогда не блокирует вызывающего.
type Bus struct {
	listeners map[string][]Listener
	timeout   time.Duration
	mu        sync.RWMutex
	logger    *zap.Logger
}

func New(logger *zap.Logger, listenerTimeout time.Duration) *Bus {
	if listenerTimeout <= 0 {
		listenerTimeout = time.Minute
	}
	return &Bus{
		listeners: make(map[string][]Listener),
		timeout:   listenerTimeout,
		logger:    logger,
	}
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish вызывает всех подписчиков события. Ошибки слушателей
// логируются и не возвращаются публикующему.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	eventName := event.Name()
	for _, listener := range b.listeners[eventName] {
		go func(l Listener) {
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), b.timeout)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", eventName),
					zap.Error(err),
				)
			}
		}(listener)
	}
}
