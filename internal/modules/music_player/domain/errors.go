package domain

import "errors"

var (
	// ErrOutOfRange is returned when a queue position or range lies outside the queue.
	ErrOutOfRange = errors.New("position is out of range")

	// ErrAlreadyVoted is returned when a user votes twice for the same track.
	ErrAlreadyVoted = errors.New("you have already voted to skip this track")
)
