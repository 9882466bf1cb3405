package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// pendingVoiceConnection tracks the state of a pending voice connection.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

// onEvent marks an event as received and signals ready if both events are present.
func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer holds a guild's VoiceStateUpdate and VoiceServerUpdate
// until both have arrived. Lavalink rejects a partial voice state.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

// setVoiceState stores voice state data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceServer
}

// setVoiceServer stores voice server data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState
}

// drain returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) drain() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID, sessionID, token, endpoint = b.channelID, b.sessionID, b.token, b.endpoint
	*b = voiceEventBuffer{}

	return channelID, sessionID, token, endpoint
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter drives a Lavalink node through DisGoLink. It implements
// ports.PlaybackEngine and ports.TrackResolver, keeping the per-guild queue
// that Lavalink lacks and advancing it when a track finishes.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	states *playbackStates

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	publisher      ports.EventPublisher
	onDisconnected func(ctx context.Context, guildID snowflake.ID)
	onMoved        func(ctx context.Context, guildID, channelID snowflake.ID)
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the node.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:      session,
		botID:        botID,
		states:       newPlaybackStates(),
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	nodeName := config.NodeName
	if nodeName == "" {
		nodeName = "main"
	}

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     nodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// SetEventPublisher sets the publisher for track ended events.
func (c *LavalinkAdapter) SetEventPublisher(publisher ports.EventPublisher) {
	c.publisher = publisher
}

// SetDisconnectHandler sets the callback run when the bot is removed from a
// voice channel by someone else.
func (c *LavalinkAdapter) SetDisconnectHandler(handler func(ctx context.Context, guildID snowflake.ID)) {
	c.onDisconnected = handler
}

// SetMoveHandler sets the callback run when the bot is dragged into another
// voice channel.
func (c *LavalinkAdapter) SetMoveHandler(handler func(ctx context.Context, guildID, channelID snowflake.ID)) {
	c.onMoved = handler
}

// Close shuts down the DisGoLink client.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// --- VoiceConnection ---

// IsConnected reports whether the bot is connected to a voice channel in the guild.
func (c *LavalinkAdapter) IsConnected(guildID snowflake.ID) bool {
	g := c.states.lookup(guildID)
	if g == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

// Connect joins a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) Connect(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{
		ready: make(chan struct{}),
	}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}

	g := c.states.get(guildID)
	g.mu.Lock()
	g.connected = true
	g.channelID = channelID
	g.mu.Unlock()

	return nil
}

// Disconnect destroys the guild's player and leaves the voice channel.
// If the player cannot be destroyed the guild stays connected. If the
// channel cannot be left after that, the guild already reports disconnected.
func (c *LavalinkAdapter) Disconnect(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			return fmt.Errorf("failed to destroy player: %w", err)
		}
	}

	// Drop the state before leaving so the resulting voice state update is
	// not mistaken for an external disconnect.
	c.states.delete(guildID)

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// --- AudioPlayer ---

// State returns the guild's playback state.
func (c *LavalinkAdapter) State(guildID snowflake.ID) domain.PlaybackState {
	g := c.states.lookup(guildID)
	if g == nil {
		return domain.StateIdle
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

// CurrentTrack returns the track being played, or nil.
func (c *LavalinkAdapter) CurrentTrack(guildID snowflake.ID) *domain.Track {
	g := c.states.lookup(guildID)
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Position returns the playback position reported by the node.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) time.Duration {
	player := c.link.ExistingPlayer(guildID)
	if player == nil || player.Track() == nil {
		return 0
	}
	return time.Duration(player.Position()) * time.Millisecond
}

// PlayNow starts the track immediately, replacing any current track.
func (c *LavalinkAdapter) PlayNow(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := c.play(ctx, guildID, track); err != nil {
		return err
	}
	g.play(track)
	return nil
}

// play sends the track to the node.
func (c *LavalinkAdapter) play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	player := c.link.Player(guildID)

	// Use WithEncodedTrack to avoid userData:null issue
	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	return c.setPaused(ctx, guildID, true)
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	return c.setPaused(ctx, guildID, false)
}

func (c *LavalinkAdapter) setPaused(ctx context.Context, guildID snowflake.ID, paused bool) error {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		if paused {
			return fmt.Errorf("failed to pause playback: %w", err)
		}
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	g.paused = paused
	return nil
}

// Stop ends playback and drops the queue.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	g.reset()
	return nil
}

// Skip ends the current track and starts the next queued one.
func (c *LavalinkAdapter) Skip(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.popNext()
	if next == nil {
		player := c.link.Player(guildID)
		if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
			return nil, fmt.Errorf("failed to stop playback: %w", err)
		}
		g.reset()
		return nil, nil
	}

	if err := c.play(ctx, guildID, next); err != nil {
		g.pushFront(next)
		return nil, err
	}
	g.play(next)
	return next, nil
}

// Seek moves the playback position of the current track.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds()))); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SetVolume sets the player volume.
func (c *LavalinkAdapter) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	player := c.link.Player(guildID)
	if err := player.Update(ctx, lavalink.WithVolume(volume)); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// --- RemoteQueue ---

// EnqueueRemote adds the track to the end of the guild's queue.
func (c *LavalinkAdapter) EnqueueRemote(_ context.Context, guildID snowflake.ID, track *domain.Track) error {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enqueue(track)
	return nil
}

// RemoveFromRemoteQueue removes count tracks starting at the 0-based index start
// and returns them.
func (c *LavalinkAdapter) RemoveFromRemoteQueue(
	_ context.Context,
	guildID snowflake.ID,
	start, count int,
) ([]*domain.Track, error) {
	g := c.states.get(guildID)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeRange(start, count)
}

// RemoteQueueLen returns the number of tracks waiting behind the current one.
func (c *LavalinkAdapter) RemoteQueueLen(guildID snowflake.ID) int {
	g := c.states.lookup(guildID)
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// --- TrackResolver ---

// LoadTracks resolves the query on the best available node.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	query *domain.SearchQuery,
) (*domain.SearchResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, query.Identifier())
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result), nil
}

// convertLoadResult converts a Lavalink load result to a domain search result.
func convertLoadResult(result *lavalink.LoadResult) *domain.SearchResult {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &domain.SearchResult{
			Type:   domain.SearchResultTrack,
			Tracks: []*domain.Track{convertTrack(data)},
		}

	case lavalink.Playlist:
		return &domain.SearchResult{
			Type:         domain.SearchResultPlaylist,
			PlaylistName: data.Info.Name,
			Tracks:       convertTracks(data.Tracks),
		}

	case lavalink.Search:
		return &domain.SearchResult{
			Type:   domain.SearchResultSearch,
			Tracks: convertTracks(data),
		}

	case lavalink.Exception:
		slog.Warn("track load failed", "error", data.Message)
		return &domain.SearchResult{
			Type: domain.SearchResultError,
		}

	default:
		return &domain.SearchResult{
			Type: domain.SearchResultEmpty,
		}
	}
}

func convertTracks(tracks []lavalink.Track) []*domain.Track {
	converted := make([]*domain.Track, len(tracks))
	for i, track := range tracks {
		converted[i] = convertTrack(track)
	}
	return converted
}

// convertTrack converts a Lavalink track to a domain track with a fresh ID.
func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	return &domain.Track{
		ID:         domain.TrackID(uuid.NewString()),
		Identifier: info.Identifier,
		Encoded:    track.Encoded,
		Title:      info.Title,
		Author:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URL:        getStringPtr(info.URI),
		ArtworkURL: getStringPtr(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func getStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- Discord voice events ---

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.signalPending(guildID, false)
}

// OnVoiceStateUpdate handles Discord voice state updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearVoiceBuffer(guildID)
		c.handleExternalDisconnect(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(&channelID, event.SessionID) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.signalPending(guildID, true)
	c.handleMove(guildID, channelID)
}

// handleMove reports a connected guild whose bot now sits in another channel.
func (c *LavalinkAdapter) handleMove(guildID, channelID snowflake.ID) {
	g := c.states.lookup(guildID)
	if g == nil {
		return
	}
	g.mu.Lock()
	moved := g.connected && g.moveTo(channelID)
	g.mu.Unlock()
	if !moved {
		return
	}

	slog.Info("bot was moved to another voice channel", "guild", guildID, "channel", channelID)

	if c.onMoved != nil {
		c.onMoved(context.Background(), guildID, channelID)
	}
}

// handleExternalDisconnect resets a guild the bot was removed from without
// going through Disconnect.
func (c *LavalinkAdapter) handleExternalDisconnect(guildID snowflake.ID) {
	g := c.states.lookup(guildID)
	if g == nil {
		return
	}
	g.mu.Lock()
	wasConnected := g.connected
	g.mu.Unlock()
	if !wasConnected {
		return
	}

	c.states.delete(guildID)
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(context.Background()); err != nil {
			slog.Error("failed to destroy player after disconnect", "guild", guildID, "error", err)
		}
	}

	slog.Info("bot was disconnected from voice", "guild", guildID)

	if c.onDisconnected != nil {
		c.onDisconnected(context.Background(), guildID)
	}
}

func (c *LavalinkAdapter) signalPending(guildID snowflake.ID, isVoiceState bool) {
	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(isVoiceState)
	}
}

// getOrCreateVoiceBuffer returns the voice buffer for a guild, creating one if needed.
func (c *LavalinkAdapter) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

// clearVoiceBuffer removes the voice buffer for a guild.
func (c *LavalinkAdapter) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

// forwardBufferedVoiceEvents sends the buffered voice events to Lavalink.
func (c *LavalinkAdapter) forwardBufferedVoiceEvents(
	guildID snowflake.ID,
	buffer *voiceEventBuffer,
) {
	channelID, sessionID, token, endpoint := buffer.drain()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", channelID,
		"hasSessionID", sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

// --- Lavalink events ---

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	guildID := player.GuildID()
	reason := convertEndReason(event.Reason)

	slog.Debug("track ended", "guild", guildID, "reason", reason)

	// Stopped and replaced tracks were ended by the adapter itself.
	if !reason.ShouldAdvanceQueue() {
		return
	}

	g := c.states.lookup(guildID)
	if g == nil {
		return
	}

	ctx := context.Background()

	g.mu.Lock()
	if !g.isCurrent(event.Track.Encoded) {
		g.mu.Unlock()
		slog.Debug("ignored track end for a track that is no longer current", "guild", guildID)
		return
	}
	ended := g.current
	g.current = nil
	g.paused = false
	next, failed := c.startNext(ctx, guildID, g)
	g.mu.Unlock()

	c.publish(domain.TrackEndedEvent{
		GuildID: guildID,
		Track:   ended,
		Next:    next,
		Reason:  reason,
	})
	for _, track := range failed {
		c.publish(domain.TrackEndedEvent{
			GuildID: guildID,
			Track:   track,
			Next:    next,
			Reason:  domain.TrackEndLoadFailed,
		})
	}
}

// startNext plays queued tracks until one starts. It returns the started
// track, or nil, and every track the node refused. g.mu must be held.
func (c *LavalinkAdapter) startNext(
	ctx context.Context,
	guildID snowflake.ID,
	g *guildPlayback,
) (*domain.Track, []*domain.Track) {
	var failed []*domain.Track
	for next := g.popNext(); next != nil; next = g.popNext() {
		if err := c.play(ctx, guildID, next); err != nil {
			slog.Error("failed to start next track",
				"guild", guildID,
				"track", next.Title,
				"error", err,
			)
			failed = append(failed, next)
			continue
		}
		g.play(next)
		return next, failed
	}
	return nil, failed
}

func (c *LavalinkAdapter) publish(event domain.TrackEndedEvent) {
	if c.publisher != nil {
		c.publisher.PublishTrackEnded(event)
	}
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.PlaybackEngine = (*LavalinkAdapter)(nil)
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
)
