package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID   snowflake.ID
	Result    *domain.SearchResult
	Requester domain.Requester
}

// EnqueueOutput contains the result of the Enqueue use case.
type EnqueueOutput struct {
	Items          []domain.QueuedItem
	StartedPlaying bool   // true if the first item started playing immediately
	Position       int    // 1-indexed upcoming position of the first item (0 = now playing)
	PlaylistName   string // set when a playlist was enqueued
}

// RemoveInput contains the input for the RemoveFromQueue use case.
// Positions are 1-indexed over the upcoming tracks; EndPosition 0 means Position.
type RemoveInput struct {
	GuildID     snowflake.ID
	Position    int
	EndPosition int
}

// RemoveOutput contains the result of the RemoveFromQueue use case.
// Removed lists what left the local queue; on a partial failure it can be
// shorter than the range the engine removed.
type RemoveOutput struct {
	Removed []domain.QueuedItem
}

// Snapshot is a read-only view of a guild's playback.
type Snapshot struct {
	State            domain.PlaybackState
	CurrentTrack     *domain.Track
	CurrentRequester *domain.Requester
	Position         time.Duration
	Upcoming         []domain.QueuedItem
	TotalQueued      int
	SkipVotes        int // votes cast to skip CurrentTrack
}

// Page returns the upcoming items on the 1-indexed page and the page count.
// Out-of-range pages are clamped.
func (s *Snapshot) Page(page, pageSize int) ([]domain.QueuedItem, int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := max(1, (len(s.Upcoming)+pageSize-1)/pageSize)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(s.Upcoming))
	return s.Upcoming[start:end], page, totalPages
}

// Enqueue queues the tracks of a search result. A playlist queues all of its
// tracks in order; any other result queues only its first track. When
// nothing is playing the first track starts immediately.
func (o *Orchestrator) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	tracks := input.Result.Selection()
	if len(tracks) == 0 {
		return nil, ErrNoResults
	}

	unlock := o.locks.lock(input.GuildID)
	defer unlock()

	if err := o.requireConnected(input.GuildID); err != nil {
		return nil, err
	}

	o.syncWithEngine(input.GuildID)
	state := o.engine.State(input.GuildID)

	output := &EnqueueOutput{
		Items:    make([]domain.QueuedItem, 0, len(tracks)),
		Position: len(o.store.Snapshot(input.GuildID)) + 1,
	}
	if state.HasTrack() {
		output.Position--
	}
	if input.Result.Type == domain.SearchResultPlaylist {
		output.PlaylistName = input.Result.PlaylistName
	}

	for i, track := range tracks {
		var err error
		playNow := i == 0 && !state.HasTrack()
		if playNow {
			err = o.engine.PlayNow(ctx, input.GuildID, track)
		} else {
			err = o.engine.EnqueueRemote(ctx, input.GuildID, track)
		}

		if err != nil {
			if i == 0 {
				return nil, &EngineFailureError{Op: "enqueue", Err: err}
			}
			slog.Error("enqueue partially failed",
				"guild", input.GuildID, "enqueued", i, "total", len(tracks), "error", err)
			return output, &PartialFailureError{
				Op:     "enqueue",
				Detail: fmt.Sprintf("%d of %d enqueued", i, len(tracks)),
				Err:    err,
			}
		}

		item := domain.NewQueuedItem(track, input.Requester)
		o.store.Append(input.GuildID, item)
		output.Items = append(output.Items, item)

		if playNow {
			output.StartedPlaying = true
			output.Position = 0
			o.votes.ClearVotes(input.GuildID)
		}
	}

	slog.Debug("enqueued tracks",
		"guild", input.GuildID, "count", len(output.Items), "startedPlaying", output.StartedPlaying)

	return output, nil
}

// RemoveFromQueue removes the upcoming tracks from Position through EndPosition.
func (o *Orchestrator) RemoveFromQueue(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	end := input.EndPosition
	if end == 0 {
		end = input.Position
	}

	unlock := o.locks.lock(input.GuildID)
	defer unlock()

	if err := o.requireConnected(input.GuildID); err != nil {
		return nil, err
	}

	o.syncWithEngine(input.GuildID)

	upcoming := o.engine.RemoteQueueLen(input.GuildID)
	if input.Position < 1 || input.Position > upcoming || end < input.Position || end > upcoming {
		return nil, ErrOutOfRange
	}
	count := end - input.Position + 1

	tracks, err := o.engine.RemoveFromRemoteQueue(ctx, input.GuildID, input.Position-1, count)
	if err != nil {
		return nil, &EngineFailureError{Op: "remove from queue", Err: err}
	}

	start := input.Position - 1
	if o.engine.CurrentTrack(input.GuildID) != nil {
		start++
	}

	removed := o.removeMirrored(input.GuildID, start, tracks)
	output := &RemoveOutput{Removed: removed}

	if missing := len(tracks) - len(removed); missing > 0 {
		slog.Error("removed tracks from engine but not from local queue",
			"guild", input.GuildID, "position", input.Position, "count", len(tracks), "missing", missing)
		return output, &PartialFailureError{
			Op:     "remove",
			Detail: fmt.Sprintf("%d of %d removed from the local queue", len(removed), len(tracks)),
			Err:    ErrQueueOutOfSync,
		}
	}

	slog.Debug("removed tracks from queue", "guild", input.GuildID, "count", len(removed))

	return output, nil
}

// removeMirrored drops the tracks the engine removed from the guild's queue
// mirror and returns the items that were dropped. The tracks are expected at
// start; any found elsewhere are removed by identity.
func (o *Orchestrator) removeMirrored(
	guildID snowflake.ID,
	start int,
	tracks []*domain.Track,
) []domain.QueuedItem {
	items := o.store.Snapshot(guildID)

	end := start + len(tracks)
	if start >= 0 && end <= len(items) && slices.EqualFunc(items[start:end], tracks,
		func(item domain.QueuedItem, track *domain.Track) bool { return item.TrackID() == track.ID },
	) {
		if removed, err := o.store.RemoveRange(guildID, start, len(tracks)); err == nil {
			return removed
		}
	}

	removed := make([]domain.QueuedItem, 0, len(tracks))
	for _, track := range tracks {
		i := slices.IndexFunc(items, func(item domain.QueuedItem) bool { return item.TrackID() == track.ID })
		if i < 0 || o.store.RemoveByTrackID(guildID, track.ID) == 0 {
			continue
		}
		removed = append(removed, items[i])
	}
	return removed
}

// QuerySnapshot returns the guild's current track and upcoming queue.
func (o *Orchestrator) QuerySnapshot(guildID snowflake.ID) (*Snapshot, error) {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return nil, err
	}
	o.syncWithEngine(guildID)

	items := o.store.Snapshot(guildID)
	snapshot := &Snapshot{
		State:       o.engine.State(guildID),
		TotalQueued: len(items),
		Upcoming:    items,
	}

	if !snapshot.State.HasTrack() {
		return snapshot, nil
	}

	snapshot.CurrentTrack = o.engine.CurrentTrack(guildID)
	snapshot.Position = o.engine.Position(guildID)

	if len(items) > 0 {
		head := items[0]
		if snapshot.CurrentTrack == nil || head.TrackID() == snapshot.CurrentTrack.ID {
			snapshot.CurrentRequester = &head.Requester
		}
		if snapshot.CurrentTrack == nil {
			snapshot.CurrentTrack = head.Track
		}
		snapshot.Upcoming = items[1:]
	}
	if snapshot.CurrentTrack != nil {
		snapshot.SkipVotes = o.votes.VoteCount(guildID, snapshot.CurrentTrack.ID)
	}

	return snapshot, nil
}
