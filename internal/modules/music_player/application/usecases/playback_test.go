package usecases

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

func TestOrchestrator_PauseResumeStop_StateChecks(t *testing.T) {
	guildID := snowflake.ID(1)

	tests := []struct {
		name         string
		state        domain.PlaybackState
		connected    bool
		op           func(*Orchestrator) error
		wantErr      error
		wantRequired domain.PlaybackState
		wantState    domain.PlaybackState
	}{
		{
			name:      "pause while playing",
			state:     domain.StatePlaying,
			connected: true,
			op:        func(o *Orchestrator) error { return o.Pause(context.Background(), guildID) },
			wantState: domain.StatePaused,
		},
		{
			name:         "pause while paused",
			state:        domain.StatePaused,
			connected:    true,
			op:           func(o *Orchestrator) error { return o.Pause(context.Background(), guildID) },
			wantErr:      ErrInvalidStateTransition,
			wantRequired: domain.StatePlaying,
			wantState:    domain.StatePaused,
		},
		{
			name:         "pause while idle",
			state:        domain.StateIdle,
			connected:    true,
			op:           func(o *Orchestrator) error { return o.Pause(context.Background(), guildID) },
			wantErr:      ErrInvalidStateTransition,
			wantRequired: domain.StatePlaying,
		},
		{
			name:      "resume while paused",
			state:     domain.StatePaused,
			connected: true,
			op:        func(o *Orchestrator) error { return o.Resume(context.Background(), guildID) },
			wantState: domain.StatePlaying,
		},
		{
			name:         "resume while playing",
			state:        domain.StatePlaying,
			connected:    true,
			op:           func(o *Orchestrator) error { return o.Resume(context.Background(), guildID) },
			wantErr:      ErrInvalidStateTransition,
			wantRequired: domain.StatePaused,
			wantState:    domain.StatePlaying,
		},
		{
			name:      "stop while paused",
			state:     domain.StatePaused,
			connected: true,
			op: func(o *Orchestrator) error {
				_, err := o.Stop(context.Background(), guildID)
				return err
			},
			wantState: domain.StateIdle,
		},
		{
			name:      "stop while idle",
			state:     domain.StateIdle,
			connected: true,
			op: func(o *Orchestrator) error {
				_, err := o.Stop(context.Background(), guildID)
				return err
			},
			wantErr:      ErrInvalidStateTransition,
			wantRequired: domain.StatePlaying,
		},
		{
			name:    "pause while disconnected",
			state:   domain.StateIdle,
			op:      func(o *Orchestrator) error { return o.Pause(context.Background(), guildID) },
			wantErr: ErrNotConnected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine()
			engine.connected = tt.connected
			engine.state = tt.state
			if tt.state.HasTrack() {
				engine.current = mockTrack("a")
			}
			h := newHarness(engine)

			err := tt.op(h.orch)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			var stateErr *InvalidStateTransitionError
			if errors.As(err, &stateErr) {
				if stateErr.Required != tt.wantRequired {
					t.Errorf("Required = %s, expected %s", stateErr.Required, tt.wantRequired)
				}
				if stateErr.Actual != tt.state {
					t.Errorf("Actual = %s, expected %s", stateErr.Actual, tt.state)
				}
			}
			if engine.state != tt.wantState {
				t.Errorf("engine state = %s, expected %s", engine.state, tt.wantState)
			}
		})
	}
}

func TestOrchestrator_Pause_EngineFailure(t *testing.T) {
	engine := connectedEngine().playing(mockTrack("a"))
	engine.pauseErr = errEngine
	h := newHarness(engine)

	err := h.orch.Pause(context.Background(), 1)

	var engineErr *EngineFailureError
	if !errors.As(err, &engineErr) {
		t.Fatalf("expected EngineFailureError, got %v", err)
	}
	if engineErr.Op != "pause" || !errors.Is(err, errEngine) {
		t.Errorf("unexpected engine failure %+v", engineErr)
	}
}

func TestOrchestrator_Stop_ClearsQueueAndVotes(t *testing.T) {
	guildID := snowflake.ID(1)
	h := newHarness(connectedEngine().playing(mockTrack("a"), mockTrack("b"), mockTrack("c")))
	h.seed(guildID)
	_, _ = h.orch.votes.RegisterVote(guildID, "a", 10, 5)

	output, err := h.orch.Stop(context.Background(), guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.ClearedCount != 3 {
		t.Errorf("ClearedCount = %d, expected 3", output.ClearedCount)
	}
	if h.engine.RemoteQueueLen(guildID) != 0 || h.engine.current != nil {
		t.Error("expected engine to drop its queue")
	}
	if len(h.store.ids(guildID)) != 0 {
		t.Errorf("expected empty mirror, got %v", h.store.ids(guildID))
	}
	if h.orch.votes.VoteCount(guildID, "a") != 0 {
		t.Error("expected votes to be cleared")
	}
}

func TestOrchestrator_Skip_Threshold(t *testing.T) {
	guildID := snowflake.ID(1)

	tests := []struct {
		name        string
		eligible    int
		votes       int
		wantRatio   float64
		wantSkipped bool
	}{
		{"single listener", 1, 1, 1.0, true},
		{"six of seven", 7, 6, 0.857, true},
		{"five of seven", 7, 5, 0.714, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2")))
			h.seed(guildID)
			h.listen(tt.eligible)

			var output *SkipOutput
			for i := range tt.votes {
				var err error
				output, err = h.orch.Skip(context.Background(), SkipInput{
					GuildID:   guildID,
					Requester: snowflake.ID(100 + i),
				})
				if err != nil {
					t.Fatalf("vote %d: unexpected error: %v", i+1, err)
				}
			}

			if math.Abs(output.Vote.Ratio-tt.wantRatio) > 0.001 {
				t.Errorf("Ratio = %v, expected ~%v", output.Vote.Ratio, tt.wantRatio)
			}
			if output.Skipped() != tt.wantSkipped {
				t.Errorf("Skipped() = %v, expected %v", output.Skipped(), tt.wantSkipped)
			}
			if output.Vote.Eligible != tt.eligible {
				t.Errorf("Eligible = %d, expected %d (bots excluded)", output.Vote.Eligible, tt.eligible)
			}

			wantQueue := []string{"t1", "t2"}
			if tt.wantSkipped {
				wantQueue = []string{"t2"}
			}
			if got := h.store.ids(guildID); !equalStrings(got, wantQueue) {
				t.Errorf("queue = %v, expected %v", got, wantQueue)
			}
		})
	}
}

func TestOrchestrator_Skip_DoubleVote(t *testing.T) {
	guildID := snowflake.ID(1)
	h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2")))
	h.seed(guildID)
	h.listen(3)
	input := SkipInput{GuildID: guildID, Requester: 100}

	first, err := h.orch.Skip(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = h.orch.Skip(context.Background(), input)
	if !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	third, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 101})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.Vote.Votes != first.Vote.Votes+1 {
		t.Errorf("repeat vote changed the tally: first %d, after another user %d",
			first.Vote.Votes, third.Vote.Votes)
	}
	if h.engine.skipCalls != 0 {
		t.Errorf("engine Skip called %d times, expected 0", h.engine.skipCalls)
	}
}

func TestOrchestrator_Skip_VotesResetAfterTrackChange(t *testing.T) {
	guildID := snowflake.ID(1)
	h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2"), mockTrack("t3")))
	h.seed(guildID)
	h.listen(1)
	input := SkipInput{GuildID: guildID, Requester: 100}

	if _, err := h.orch.Skip(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output, err := h.orch.Skip(context.Background(), input)
	if err != nil {
		t.Fatalf("expected fresh vote after track change, got %v", err)
	}
	if output.SkippedTrack.ID != "t2" || output.NextTrack.ID != "t3" {
		t.Errorf("skipped %v to %v, expected t2 to t3", output.SkippedTrack.ID, output.NextTrack.ID)
	}
}

func TestOrchestrator_Skip_Preconditions(t *testing.T) {
	guildID := snowflake.ID(1)

	t.Run("paused", func(t *testing.T) {
		engine := connectedEngine().playing(mockTrack("t1"))
		engine.state = domain.StatePaused
		h := newHarness(engine)

		_, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})
		if !errors.Is(err, ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("engine skip fails", func(t *testing.T) {
		engine := connectedEngine().playing(mockTrack("t1"), mockTrack("t2"))
		engine.skipErr = errEngine
		h := newHarness(engine)
		h.seed(guildID)
		h.listen(1)

		_, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})

		var engineErr *EngineFailureError
		if !errors.As(err, &engineErr) {
			t.Fatalf("expected EngineFailureError, got %v", err)
		}
		if got := h.store.ids(guildID); !equalStrings(got, []string{"t1", "t2"}) {
			t.Errorf("queue = %v, expected it untouched", got)
		}
	})

	t.Run("skip last track", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1")))
		h.seed(guildID)
		h.listen(1)

		output, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.NextTrack != nil {
			t.Errorf("expected no next track, got %v", output.NextTrack.ID)
		}
		if len(h.store.ids(guildID)) != 0 {
			t.Errorf("expected empty queue, got %v", h.store.ids(guildID))
		}
	})

	t.Run("requester outside the channel", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1")))
		h.seed(guildID)
		h.listen(1)

		_, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 500})
		if !errors.Is(err, ErrNotListening) {
			t.Errorf("expected ErrNotListening, got %v", err)
		}
		if h.orch.votes.VoteCount(guildID, "t1") != 0 {
			t.Error("expected no vote to be recorded")
		}
	})

	t.Run("voice channel unknown", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1")))

		_, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})

	t.Run("voice state lookup fails", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1")))
		h.seed(guildID)
		h.voice.err = errEngine

		_, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})
		if !errors.Is(err, errEngine) {
			t.Errorf("expected the lookup error, got %v", err)
		}
	})
}

func TestOrchestrator_Skip_VotesFromFinishedTrackDoNotCarryOver(t *testing.T) {
	guildID := snowflake.ID(1)
	h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2"), mockTrack("t3")))
	h.seed(guildID)
	h.listen(2)

	first, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Skipped() {
		t.Fatal("one of two votes should not skip")
	}

	// t1 ends on its own; the event has not been handled when the next vote arrives.
	ended := h.engine.finish(guildID)

	second, err := h.orch.Skip(context.Background(), SkipInput{GuildID: guildID, Requester: 101})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Skipped() || second.Vote.Votes != 1 {
		t.Errorf("vote on t2 = %+v skipped=%v, expected 1 vote and no skip", second.Vote, second.Skipped())
	}
	if h.engine.skipCalls != 0 || h.engine.current.ID != "t2" {
		t.Errorf("engine skipped %d times and plays %s, expected t2 untouched", h.engine.skipCalls, h.engine.current.ID)
	}

	h.orch.HandleTrackEnded(context.Background(), ended)

	if got := h.store.ids(guildID); !equalStrings(got, []string{"t2", "t3"}) {
		t.Errorf("queue = %v, expected [t2 t3]", got)
	}
	if h.orch.votes.VoteCount(guildID, "t2") != 1 {
		t.Error("handling t1's end should keep the vote cast for t2")
	}
}

func TestOrchestrator_Seek(t *testing.T) {
	guildID := snowflake.ID(1)

	tests := []struct {
		name     string
		track    *domain.Track
		position time.Duration
		wantErr  error
	}{
		{"middle", mockTrack("a"), time.Minute, nil},
		{"end", mockTrack("a"), 3 * time.Minute, nil},
		{"past end", mockTrack("a"), 3*time.Minute + time.Second, ErrInvalidDuration},
		{"negative", mockTrack("a"), -time.Second, ErrInvalidDuration},
		{"stream", &domain.Track{ID: "s", IsStream: true}, 0, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(connectedEngine().playing(tt.track))

			err := h.orch.Seek(context.Background(), guildID, tt.position)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && h.engine.position != tt.position {
				t.Errorf("position = %v, expected %v", h.engine.position, tt.position)
			}
		})
	}
}

func TestOrchestrator_SetVolume(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		volume    int
		wantErr   error
	}{
		{"min", true, 1, nil},
		{"max", true, 100, nil},
		{"zero", true, 0, ErrInvalidVolume},
		{"too high", true, 150, ErrInvalidVolume},
		{"idle but connected", true, 40, nil},
		{"not connected", false, 40, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine()
			engine.connected = tt.connected
			h := newHarness(engine)

			err := h.orch.SetVolume(context.Background(), 1, tt.volume)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && engine.volume != tt.volume {
				t.Errorf("volume = %d, expected %d", engine.volume, tt.volume)
			}
		})
	}
}

func TestOrchestrator_HandleTrackEnded(t *testing.T) {
	guildID := snowflake.ID(1)

	t.Run("finished advances mirror", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2")))
		h.seed(guildID)
		_, _ = h.orch.votes.RegisterVote(guildID, "t1", 100, 3)

		h.orch.HandleTrackEnded(context.Background(), h.engine.finish(guildID))

		if got := h.store.ids(guildID); !equalStrings(got, []string{"t2"}) {
			t.Errorf("queue = %v, expected [t2]", got)
		}
		if h.orch.votes.VoteCount(guildID, "t1") != 0 {
			t.Error("expected votes to be cleared on track change")
		}
	})

	t.Run("replaced is ignored", func(t *testing.T) {
		h := newHarness(connectedEngine().playing(mockTrack("t1"), mockTrack("t2")))
		h.seed(guildID)

		h.orch.HandleTrackEnded(context.Background(), domain.TrackEndedEvent{
			GuildID: guildID,
			Track:   mockTrack("t1"),
			Reason:  domain.TrackEndReplaced,
		})

		if got := h.store.ids(guildID); !equalStrings(got, []string{"t1", "t2"}) {
			t.Errorf("queue = %v, expected it untouched", got)
		}
	})
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
