package bus

import "sync"

// Topic is a named signal channel between checkout, orchestrator and UI.
type Topic string

const (
	TopicOrderAfterPlaced     Topic = "order-after-placed"
	TopicBeforePlaceOrder     Topic = "checkout-before-placeOrder"
	TopicDoPlaceOrder         Topic = "checkout-do-placeOrder"
	TopicPaymentMethodChanged Topic = "checkout-payment-method-changed"
	TopicProgressStart        Topic = "notification-progress-start"
	TopicProgressStop         Topic = "notification-progress-stop"
	TopicNotification         Topic = "notification"
	TopicNavigate             Topic = "navigate"
)

// OrderPlaced is the payload of TopicOrderAfterPlaced.
type OrderPlaced struct {
	OrderID string `json:"order_id"`
}

// PaymentMethodChanged is the payload of TopicPaymentMethodChanged. Either a
// plain method code or a structured additional-data object, never both.
type PaymentMethodChanged struct {
	Code           string                 `json:"code"`
	AdditionalData map[string]interface{} `json:"additional_data"`
}

// Notification is the payload of TopicNotification.
type Notification struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	HasNoTimeout bool   `json:"has_no_timeout"`
}

// Handler consumes a published payload.
type Handler func(payload interface{})

type subscriber struct {
	name string
	fn   Handler
}

// Bus is a synchronous in-process pub/sub channel. Subscriptions are keyed by
// (topic, name): re-subscribing replaces the existing handler instead of
// adding a duplicate, and unsubscribing an unknown name is a no-op.
type Bus struct {
	mu     sync.RWMutex
	topics map[Topic][]subscriber
}

func New() *Bus {
	return &Bus{topics: make(map[Topic][]subscriber)}
}

// Subscribe registers fn under name on topic. Idempotent per (topic, name).
func (b *Bus) Subscribe(topic Topic, name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i := range subs {
		if subs[i].name == name {
			subs[i].fn = fn
			return
		}
	}
	b.topics[topic] = append(subs, subscriber{name: name, fn: fn})
}

// Unsubscribe removes the named handler from topic, if present.
func (b *Bus) Unsubscribe(topic Topic, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i := range subs {
		if subs[i].name == name {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers payload to every subscriber of topic, synchronously and in
// subscription order.
func (b *Bus) Publish(topic Topic, payload interface{}) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(payload)
	}
}

// Subscribers returns the number of active handlers on topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
