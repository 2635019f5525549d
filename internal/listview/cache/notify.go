package cache

import (
	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
)

// Notifier receives fire-and-forget user feedback
type Notifier interface {
	Notify(kind domain.NotifyKind, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(kind domain.NotifyKind, message string)

func (f NotifierFunc) Notify(kind domain.NotifyKind, message string) { f(kind, message) }

type busNotifier struct {
	bus eventbus.EventBus
}

// NewBusNotifier publishes notifications as NotificationEvents
func NewBusNotifier(bus eventbus.EventBus) Notifier {
	return busNotifier{bus: bus}
}

func (n busNotifier) Notify(kind domain.NotifyKind, message string) {
	n.bus.Publish(domain.NotificationEvent{Kind: kind, Message: message})
}

type nopNotifier struct{}

func (nopNotifier) Notify(domain.NotifyKind, string) {}
