package worker

import (
	"github.com/spec-kit/bookstore-api/internal/events"
	"github.com/spec-kit/bookstore-api/internal/service"
)

var notifiedEvents = []events.EventType{
	events.EventOrderPlaced,
	events.EventUserBanned,
}

// StartNotificationWorker routes order and account events to the notifier.
func StartNotificationWorker(dispatcher events.Dispatcher, notifier *service.NotificationService) {
	if dispatcher == nil || notifier == nil {
		return
	}
	for _, eventType := range notifiedEvents {
		dispatcher.Subscribe(eventType, notifier.Handle)
	}
}
