package infrastructure

import (
	"context"
	"log/slog"

	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// TrackEndedHandler reconciles session state after the engine finishes a track.
type TrackEndedHandler interface {
	HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent)
}

// PlaybackEventHandler forwards engine events from the bus to the orchestrator.
type PlaybackEventHandler struct {
	handler    TrackEndedHandler
	subscriber ports.EventSubscriber
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	handler TrackEndedHandler,
	subscriber ports.EventSubscriber,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		handler:    handler,
		subscriber: subscriber,
	}
}

// Start registers event handlers with the subscriber.
func (h *PlaybackEventHandler) Start() {
	h.subscriber.OnTrackEnded(h.handleTrackEnded)

	slog.Debug("playback event handler started")
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		slog.Debug("track ended but should not advance queue",
			"guild", event.GuildID,
			"reason", event.Reason,
		)
		return
	}

	attrs := []any{"guild", event.GuildID, "reason", event.Reason}
	if event.Track != nil {
		attrs = append(attrs, "track", event.Track.Title)
	}
	if event.Next != nil {
		attrs = append(attrs, "next", event.Next.Title)
	}
	slog.Debug("track ended, advancing queue", attrs...)

	h.handler.HandleTrackEnded(ctx, event)
}
