package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/models"
	"github.com/thand-io/reader/internal/storage"
)

const (
	DefaultHistorySize  = 50
	historyWriteTimeout = 2 * time.Second
)

// History keeps the most recent notifications in a ring buffer. When a
// storage provider is attached the buffer is persisted after every
// notification so later runs can show what happened.
type History struct {
	mu         sync.RWMutex
	buffer     []models.Notification
	maxSize    int
	currentPos int
	isFull     bool

	provider storage.Provider
	key      string
}

type HistoryOption func(*History)

// WithHistoryStorage persists the buffer under key.
func WithHistoryStorage(provider storage.Provider, key string) HistoryOption {
	return func(h *History) {
		h.provider = provider
		h.key = key
	}
}

func NewHistory(size int, opts ...HistoryOption) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}

	h := &History{
		buffer:  make([]models.Notification, size),
		maxSize: size,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) Notify(n models.Notification) {
	h.mu.Lock()
	h.push(n)
	snapshot := h.eventsLocked()
	h.mu.Unlock()

	h.persist(snapshot)
}

func (h *History) push(n models.Notification) {
	h.buffer[h.currentPos] = n
	h.currentPos = (h.currentPos + 1) % h.maxSize

	if h.currentPos == 0 {
		h.isFull = true
	}
}

// Events returns every buffered notification, oldest first.
func (h *History) Events() []models.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.eventsLocked()
}

func (h *History) Recent(count int) []models.Notification {
	events := h.Events()
	if len(events) <= count {
		return events
	}
	return events[len(events)-count:]
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	h.buffer = make([]models.Notification, h.maxSize)
	h.currentPos = 0
	h.isFull = false
	h.mu.Unlock()

	if h.provider == nil {
		return nil
	}
	return h.provider.Remove(ctx, h.key)
}

// Load restores a previously persisted buffer. A missing or unreadable
// entry leaves the history empty.
func (h *History) Load(ctx context.Context) error {
	if h.provider == nil {
		return nil
	}

	raw, err := h.provider.Get(ctx, h.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var events []models.Notification
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		logrus.WithError(err).Warnln("Discarding unreadable notification history")
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, n := range events {
		h.push(n)
	}
	return nil
}

func (h *History) eventsLocked() []models.Notification {
	if !h.isFull {
		result := make([]models.Notification, h.currentPos)
		copy(result, h.buffer[:h.currentPos])
		return result
	}

	result := make([]models.Notification, h.maxSize)
	copy(result, h.buffer[h.currentPos:])
	copy(result[h.maxSize-h.currentPos:], h.buffer[:h.currentPos])
	return result
}

func (h *History) persist(events []models.Notification) {
	if h.provider == nil {
		return
	}

	data, err := json.Marshal(events)
	if err != nil {
		logrus.WithError(err).Errorln("Failed to encode notification history")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	if err := h.provider.Set(ctx, h.key, string(data)); err != nil {
		logrus.WithError(err).Errorln("Failed to persist notification history")
	}
}
