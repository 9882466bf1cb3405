package usecases

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

var errEngine = errors.New("engine unavailable")

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:       domain.TrackID(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Author:   "Artist",
		Duration: 3 * time.Minute,
	}
}

func mockItem(id string) domain.QueuedItem {
	return domain.NewQueuedItem(mockTrack(id), mockRequester(1))
}

func mockRequester(id uint64) domain.Requester {
	return domain.Requester{ID: snowflake.ID(id), DisplayName: "user"}
}

func listeners(n int) []domain.Member {
	members := make([]domain.Member, 0, n+1)
	for i := range n {
		members = append(members, domain.Member{ID: snowflake.ID(100 + i)})
	}
	return append(members, domain.Member{ID: snowflake.ID(999), IsBot: true})
}

// mockStore is a map-backed domain.GuildQueueStore.
type mockStore struct {
	sessions map[snowflake.ID]*domain.GuildSession
}

func newMockStore() *mockStore {
	return &mockStore{sessions: make(map[snowflake.ID]*domain.GuildSession)}
}

func (m *mockStore) EnsureSession(guildID snowflake.ID) *domain.GuildSession {
	s, ok := m.sessions[guildID]
	if !ok {
		s = domain.NewGuildSession(guildID)
		m.sessions[guildID] = s
	}
	return s
}

func (m *mockStore) Session(guildID snowflake.ID) *domain.GuildSession {
	return m.sessions[guildID]
}

func (m *mockStore) Append(guildID snowflake.ID, items ...domain.QueuedItem) {
	m.EnsureSession(guildID).Append(items...)
}

func (m *mockStore) RemoveByTrackID(guildID snowflake.ID, trackID domain.TrackID) int {
	if s := m.sessions[guildID]; s != nil {
		return s.RemoveByTrackID(trackID)
	}
	return 0
}

func (m *mockStore) RemoveRange(guildID snowflake.ID, start, count int) ([]domain.QueuedItem, error) {
	s := m.sessions[guildID]
	if s == nil {
		return nil, domain.ErrOutOfRange
	}
	return s.RemoveRange(start, count)
}

func (m *mockStore) Snapshot(guildID snowflake.ID) []domain.QueuedItem {
	if s := m.sessions[guildID]; s != nil {
		return s.Snapshot()
	}
	return nil
}

func (m *mockStore) Clear(guildID snowflake.ID) int {
	if s := m.sessions[guildID]; s != nil {
		return s.ClearQueue()
	}
	return 0
}

// ids returns the queued track IDs for the guild.
func (m *mockStore) ids(guildID snowflake.ID) []string {
	items := m.Snapshot(guildID)
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = string(item.TrackID())
	}
	return ids
}

// fakeEngine simulates a single-guild playback engine with its own queue.
type fakeEngine struct {
	connected bool
	channelID snowflake.ID
	state     domain.PlaybackState
	current   *domain.Track
	queue     []*domain.Track
	volume    int
	position  time.Duration

	connectErr    error
	disconnectErr error
	leaveErr      error // returned after Disconnect dropped the connection
	volumeErr     error
	playErr       error
	pauseErr      error
	resumeErr     error
	stopErr       error
	skipErr       error
	seekErr       error
	removeErr     error
	enqueueErr    error
	enqueueFailAt int // 1-indexed call of EnqueueRemote that fails; 0 = every call when enqueueErr set

	enqueueCalls int
	skipCalls    int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{}
}

// connectedEngine returns an engine already connected to a voice channel.
func connectedEngine() *fakeEngine {
	return &fakeEngine{connected: true, channelID: snowflake.ID(20), volume: 100}
}

// playing puts the engine in the playing state with current and queued tracks.
func (f *fakeEngine) playing(current *domain.Track, queued ...*domain.Track) *fakeEngine {
	f.state = domain.StatePlaying
	f.current = current
	f.queue = append(f.queue, queued...)
	return f
}

func (f *fakeEngine) IsConnected(_ snowflake.ID) bool { return f.connected }

func (f *fakeEngine) Connect(_ context.Context, _, channelID snowflake.ID) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	f.channelID = channelID
	return nil
}

func (f *fakeEngine) Disconnect(_ context.Context, _ snowflake.ID) error {
	if f.disconnectErr != nil {
		return f.disconnectErr
	}
	f.connected = false
	f.state = domain.StateIdle
	f.current = nil
	f.queue = nil
	return f.leaveErr
}

func (f *fakeEngine) State(_ snowflake.ID) domain.PlaybackState { return f.state }

func (f *fakeEngine) CurrentTrack(_ snowflake.ID) *domain.Track { return f.current }

func (f *fakeEngine) Position(_ snowflake.ID) time.Duration { return f.position }

func (f *fakeEngine) PlayNow(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if f.playErr != nil {
		return f.playErr
	}
	f.current = track
	f.state = domain.StatePlaying
	return nil
}

func (f *fakeEngine) Pause(_ context.Context, _ snowflake.ID) error {
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.state = domain.StatePaused
	return nil
}

func (f *fakeEngine) Resume(_ context.Context, _ snowflake.ID) error {
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.state = domain.StatePlaying
	return nil
}

func (f *fakeEngine) Stop(_ context.Context, _ snowflake.ID) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	f.state = domain.StateIdle
	f.current = nil
	f.queue = nil
	return nil
}

func (f *fakeEngine) Skip(_ context.Context, _ snowflake.ID) (*domain.Track, error) {
	f.skipCalls++
	if f.skipErr != nil {
		return nil, f.skipErr
	}
	if len(f.queue) == 0 {
		f.state = domain.StateIdle
		f.current = nil
		return nil, nil
	}
	f.current = f.queue[0]
	f.queue = f.queue[1:]
	f.state = domain.StatePlaying
	return f.current, nil
}

func (f *fakeEngine) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.position = position
	return nil
}

func (f *fakeEngine) SetVolume(_ context.Context, _ snowflake.ID, volume int) error {
	if f.volumeErr != nil {
		return f.volumeErr
	}
	f.volume = volume
	return nil
}

func (f *fakeEngine) EnqueueRemote(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	f.enqueueCalls++
	if f.enqueueErr != nil && (f.enqueueFailAt == 0 || f.enqueueCalls >= f.enqueueFailAt) {
		return f.enqueueErr
	}
	f.queue = append(f.queue, track)
	return nil
}

func (f *fakeEngine) RemoveFromRemoteQueue(
	_ context.Context,
	_ snowflake.ID,
	start, count int,
) ([]*domain.Track, error) {
	if f.removeErr != nil {
		return nil, f.removeErr
	}
	removed := slices.Clone(f.queue[start : start+count])
	f.queue = slices.Delete(f.queue, start, start+count)
	return removed, nil
}

func (f *fakeEngine) RemoteQueueLen(_ snowflake.ID) int { return len(f.queue) }

// finish simulates the current track playing to its end.
func (f *fakeEngine) finish(guildID snowflake.ID) domain.TrackEndedEvent {
	ended := f.current
	next, _ := f.Skip(context.Background(), guildID)
	f.skipCalls--
	return domain.TrackEndedEvent{
		GuildID: guildID,
		Track:   ended,
		Next:    next,
		Reason:  domain.TrackEndFinished,
	}
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID    // userID -> channelID
	members  map[snowflake.ID][]domain.Member // channelID -> members
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

func (m *mockVoiceStateProvider) GetVoiceChannelMembers(_, channelID snowflake.ID) ([]domain.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[channelID], nil
}

type mockLyricsProvider struct {
	lyrics string
	err    error
	calls  int
}

func (m *mockLyricsProvider) FetchLyrics(_ context.Context, _ *domain.Track) (string, error) {
	m.calls++
	return m.lyrics, m.err
}

type testHarness struct {
	store  *mockStore
	engine *fakeEngine
	orch   *Orchestrator
	lyrics *mockLyricsProvider
	voice  *mockVoiceStateProvider
}

// newHarness builds an Orchestrator around engine with a fresh store.
func newHarness(engine *fakeEngine) *testHarness {
	store := newMockStore()
	lyrics := &mockLyricsProvider{}
	voiceState := &mockVoiceStateProvider{
		channels: map[snowflake.ID]snowflake.ID{},
		members:  map[snowflake.ID][]domain.Member{},
	}
	orch := NewOrchestrator(
		store,
		engine,
		NewVoteSkipCoordinator(store, domain.DefaultVoteSkipThreshold),
		voiceState,
		lyrics,
		OrchestratorConfig{LyricsMinChunk: 10, LyricsMaxChunk: 20},
	)
	return &testHarness{store: store, engine: engine, orch: orch, lyrics: lyrics, voice: voiceState}
}

// seed mirrors the engine's current and queued tracks and its voice channel
// into the store.
func (h *testHarness) seed(guildID snowflake.ID) {
	session := h.store.EnsureSession(guildID)
	session.SetVoiceChannelID(h.engine.channelID)
	if h.engine.current != nil {
		session.Append(domain.NewQueuedItem(h.engine.current, mockRequester(1)))
	}
	for _, t := range h.engine.queue {
		session.Append(domain.NewQueuedItem(t, mockRequester(1)))
	}
}

// listen puts n human listeners and one bot in the engine's voice channel.
func (h *testHarness) listen(n int) {
	h.voice.members[h.engine.channelID] = listeners(n)
}
