package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foodieshare/foodieshare-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	notificationChannelPrefix = "notifications:"
	subscriberBuffer          = 16
)

type subscriber struct {
	ch chan models.Notification
}

// NotificationHub fans notifications out to per-user subscribers. With a Redis
// client, Publish goes through Redis Pub/Sub and Run delivers what any API
// instance published; without one, Publish delivers locally.
type NotificationHub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	redis  *redis.Client
	logger *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

func NewNotificationHub(client *redis.Client, logger *slog.Logger) *NotificationHub {
	return &NotificationHub{
		subs:   make(map[string]map[*subscriber]struct{}),
		redis:  client,
		logger: logger,
		ready:  make(chan struct{}),
	}
}

// Subscribe registers a listener for uid. The returned cancel func must be
// called once the listener is done; it closes the channel.
func (h *NotificationHub) Subscribe(uid string) (<-chan models.Notification, func()) {
	sub := &subscriber{ch: make(chan models.Notification, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[uid] == nil {
		h.subs[uid] = make(map[*subscriber]struct{})
	}
	h.subs[uid][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[uid], sub)
			if len(h.subs[uid]) == 0 {
				delete(h.subs, uid)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// SubscriberCount returns the number of local listeners for uid.
func (h *NotificationHub) SubscriberCount(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[uid])
}

// Publish sends n to every subscriber of n.RecipientID.
func (h *NotificationHub) Publish(ctx context.Context, n models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if h.redis == nil {
		h.fanOut(n)
		return nil
	}

	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, notificationChannelPrefix+n.RecipientID, data).Err()
}

// fanOut never blocks: a subscriber whose buffer is full misses the notification.
func (h *NotificationHub) fanOut(n models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[n.RecipientID] {
		select {
		case sub.ch <- n:
		default:
			h.logger.Warn("dropping notification for slow subscriber", "recipient", n.RecipientID, "type", n.Type)
		}
	}
}

// Ready is closed once the Redis subscription is live.
func (h *NotificationHub) Ready() <-chan struct{} {
	return h.ready
}

// Run relays notifications from Redis to local subscribers until ctx is done,
// resubscribing with backoff on errors. Without Redis it returns immediately.
func (h *NotificationHub) Run(ctx context.Context) {
	if h.redis == nil {
		h.readyOnce.Do(func() { close(h.ready) })
		return
	}

	backoff := time.Second
	for {
		if err := h.relay(ctx); err != nil && ctx.Err() == nil {
			h.logger.Warn("notification subscriber error", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (h *NotificationHub) relay(ctx context.Context) error {
	pubsub := h.redis.PSubscribe(ctx, notificationChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	h.readyOnce.Do(func() { close(h.ready) })
	h.logger.Info("notification subscriber started", "pattern", notificationChannelPrefix+"*")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return err
		}

		var n models.Notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			h.logger.Warn("failed to unmarshal notification", "error", err)
			continue
		}
		if n.RecipientID == "" {
			n.RecipientID = strings.TrimPrefix(msg.Channel, notificationChannelPrefix)
		}
		h.fanOut(n)
	}
}
