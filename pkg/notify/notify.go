// Package notify evaluates notification rules after a state change and hands
// matching events to a dispatcher. Rules compare the state before and after a
// check, so an observation that policy rejected never fires anything.
package notify

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pricewatch/pkg/domain"
)

// EventType identifies which rule fired
type EventType string

// notification event types
const (
	EventPriceDrop   EventType = "price_drop"
	EventTargetPrice EventType = "target_price"
	EventBackInStock EventType = "back_in_stock"
	EventOutOfStock  EventType = "out_of_stock"
)

// Event is a single triggered notification
type Event struct {
	Type      EventType
	Item      *domain.Item
	NotifyURL string
	OldPrice  *float64
	NewPrice  *float64
	Message   string
}

// Dispatcher delivers triggered events. Delivery transports are external,
// the default implementation just logs.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// LogDispatcher writes events to the log, used when no delivery transport is
// wired in
type LogDispatcher struct{}

// Dispatch logs the event
func (LogDispatcher) Dispatch(_ context.Context, ev Event) error {
	lgr.Printf("[INFO] notification %s for item %d (%s): %s", ev.Type, ev.Item.ID, ev.Item.Name, ev.Message)
	return nil
}

// Change captures the applied state transition for one check
type Change struct {
	OldPrice *float64
	NewPrice *float64 // nil when the price was not applied this check
	OldStock *bool
	NewStock *bool // nil when the stock state was not applied this check
}

// Evaluate runs the profile's rules against a state change and returns the
// events that fired. A nil profile means the item has no notifications.
func Evaluate(item *domain.Item, profile *domain.NotificationProfile, ch Change) []Event {
	if profile == nil {
		return nil
	}

	var events []Event

	if profile.NotifyOnPriceDrop && ch.OldPrice != nil && ch.NewPrice != nil && *ch.OldPrice > 0 {
		dropPct := (*ch.OldPrice - *ch.NewPrice) / *ch.OldPrice * 100
		if dropPct >= profile.PriceDropThresholdPercent && dropPct > 0 {
			events = append(events, Event{
				Type: EventPriceDrop, Item: item, NotifyURL: profile.NotifyURL,
				OldPrice: ch.OldPrice, NewPrice: ch.NewPrice,
				Message: fmt.Sprintf("price dropped %.1f%%: %.2f -> %.2f", dropPct, *ch.OldPrice, *ch.NewPrice),
			})
		}
	}

	if profile.NotifyOnTargetPrice && item.TargetPrice != nil && ch.NewPrice != nil &&
		*ch.NewPrice <= *item.TargetPrice && (ch.OldPrice == nil || *ch.OldPrice > *item.TargetPrice) {
		events = append(events, Event{
			Type: EventTargetPrice, Item: item, NotifyURL: profile.NotifyURL,
			OldPrice: ch.OldPrice, NewPrice: ch.NewPrice,
			Message: fmt.Sprintf("price %.2f reached target %.2f", *ch.NewPrice, *item.TargetPrice),
		})
	}

	// stock rules fire only on a known-to-known transition, unknown on either
	// side is not a change
	if profile.NotifyOnStockChange && ch.OldStock != nil && ch.NewStock != nil && *ch.OldStock != *ch.NewStock {
		ev := Event{Item: item, NotifyURL: profile.NotifyURL}
		if *ch.NewStock {
			ev.Type = EventBackInStock
			ev.Message = "back in stock"
		} else {
			ev.Type = EventOutOfStock
			ev.Message = "out of stock"
		}
		events = append(events, ev)
	}

	return events
}
