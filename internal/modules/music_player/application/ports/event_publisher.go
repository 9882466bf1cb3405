package ports

import "github.com/sglre6355/gabby/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing engine events asynchronously.
type EventPublisher interface {
	PublishTrackEnded(event domain.TrackEndedEvent)
}
