package usecases

import (
	"errors"
	"fmt"

	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// Errors returned by the music player use cases.
var (
	// ErrInvalidVolume is returned when a volume lies outside 1-100.
	ErrInvalidVolume = errors.New("volume must be between 1 and 100")

	// ErrAlreadyConnected is returned when joining while already in a voice channel.
	ErrAlreadyConnected = errors.New("already connected to a voice channel")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrInvalidDuration is returned when a seek target lies outside the current track.
	ErrInvalidDuration = errors.New("position is outside the current track")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrEmptyQuery is returned when a search query is blank.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrNoLyrics is returned when no lyrics are known for the current track.
	ErrNoLyrics = errors.New("no lyrics found for this track")

	// ErrNotListening is returned when a listener-only command comes from
	// someone outside the bot's voice channel.
	ErrNotListening = errors.New("you must be in my voice channel")

	// ErrQueueOutOfSync is returned when the local queue no longer holds
	// tracks the engine reports.
	ErrQueueOutOfSync = errors.New("local queue is out of sync with the engine")

	// ErrInvalidStateTransition matches every InvalidStateTransitionError.
	ErrInvalidStateTransition = errors.New("invalid playback state for this operation")

	// ErrPartialFailure matches every PartialFailureError.
	ErrPartialFailure = errors.New("operation was only partially applied")

	ErrAlreadyVoted = domain.ErrAlreadyVoted
	ErrOutOfRange   = domain.ErrOutOfRange
)

// InvalidStateTransitionError is returned when the engine is not in the state
// an operation requires.
type InvalidStateTransitionError struct {
	Required domain.PlaybackState
	Actual   domain.PlaybackState
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("playback must be %s but is %s", e.Required, e.Actual)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// EngineFailureError is returned when the playback engine rejects an action.
// No local state was changed.
type EngineFailureError struct {
	Op  string
	Err error
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("playback engine failed to %s: %v", e.Op, e.Err)
}

func (e *EngineFailureError) Unwrap() error {
	return e.Err
}

// PartialFailureError is returned when an operation was applied to the engine
// or the local queue only in part. Detail describes what did take effect.
type PartialFailureError struct {
	Op     string
	Detail string
	Err    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed (%s): %v", e.Op, e.Detail, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}
