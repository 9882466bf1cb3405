package ports

import (
	"context"

	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// EventSubscriber defines the interface for subscribing to engine events.
// Handlers are registered with the subscriber and invoked when events occur.
type EventSubscriber interface {
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
}
