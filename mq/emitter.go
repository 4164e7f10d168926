package mq

import (
	"context"
	"encoding/json"
	"log"

	"dorax/models"
	"dorax/rdx"
)

const bookingChannel = "booking-events"

// Emit publishes a booking lifecycle event to Redis. Failures are logged and
// dropped; event delivery is best-effort and never blocks the request path.
func Emit(ctx context.Context, event models.BookingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[mq] failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, bookingChannel, data).Err(); err != nil {
		log.Printf("[mq] failed to publish %s for booking %s: %v", event.Event, event.BookingID, err)
	}
}

// StartBookingEventWorker consumes booking events and fans them out to the
// given sinks (the WebSocket broadcaster, notification hooks).
func StartBookingEventWorker(sinks ...func(models.BookingEvent)) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, bookingChannel)
	ch := sub.Channel()

	log.Println("[mq] booking event worker listening")

	for msg := range ch {
		var event models.BookingEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[mq] failed to parse event: %v", err)
			continue
		}
		for _, sink := range sinks {
			sink(event)
		}
	}
}
