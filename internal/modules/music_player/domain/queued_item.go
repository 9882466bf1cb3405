package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Requester identifies the user who asked for a track.
type Requester struct {
	ID          snowflake.ID
	DisplayName string
}

// QueuedItem associates a track handle with who requested it and when.
type QueuedItem struct {
	Track      *Track
	Requester  Requester
	EnqueuedAt time.Time
}

// NewQueuedItem creates a new QueuedItem with the current time as EnqueuedAt.
func NewQueuedItem(track *Track, requester Requester) QueuedItem {
	return QueuedItem{
		Track:      track,
		Requester:  requester,
		EnqueuedAt: time.Now().UTC(),
	}
}

// TrackID returns the ID of the queued track, or "" if the item has no track.
func (q QueuedItem) TrackID() TrackID {
	if q.Track == nil {
		return ""
	}
	return q.Track.ID
}
