package domain

// Queue is the ordered local mirror of what a guild intends to have played.
// The head is the engine's current track while playing or paused; the rest
// mirrors the engine's own queue in order. Queue is not safe for concurrent
// use; GuildSession guards it.
type Queue struct {
	items []QueuedItem
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		items: make([]QueuedItem, 0),
	}
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Head returns the first item, or nil if the queue is empty.
func (q *Queue) Head() *QueuedItem {
	if q.IsEmpty() {
		return nil
	}
	head := q.items[0]
	return &head
}

// Append adds items to the end of the queue.
func (q *Queue) Append(items ...QueuedItem) {
	q.items = append(q.items, items...)
}

// RemoveByTrackID removes every item whose track matches id and returns how many were removed.
func (q *Queue) RemoveByTrackID(id TrackID) int {
	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if item.TrackID() == id {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	// Zero the tail so dropped track handles can be collected.
	clear(q.items[len(kept):])
	q.items = kept
	return removed
}

// RemoveRange removes count items starting at the 0-based index start and returns them.
// The range must lie entirely within the queue.
func (q *Queue) RemoveRange(start, count int) ([]QueuedItem, error) {
	if start < 0 || count < 1 || start+count > q.Len() {
		return nil, ErrOutOfRange
	}

	removed := make([]QueuedItem, count)
	copy(removed, q.items[start:start+count])

	n := q.Len()
	q.items = append(q.items[:start], q.items[start+count:]...)
	clear(q.items[len(q.items):n])
	return removed, nil
}

// AlignHead drops the items queued before the first item for id, so that id
// becomes the head. It reports how many items were dropped and whether id was
// found; the queue is untouched when it was not.
func (q *Queue) AlignHead(id TrackID) (int, bool) {
	if head := q.Head(); head != nil && head.TrackID() == id {
		return 0, true
	}
	for i, item := range q.items {
		if item.TrackID() != id {
			continue
		}
		n := q.Len()
		q.items = append(q.items[:0], q.items[i:]...)
		clear(q.items[len(q.items):n])
		return i, true
	}
	return 0, false
}

// List returns a copy of all items in order.
func (q *Queue) List() []QueuedItem {
	result := make([]QueuedItem, q.Len())
	copy(result, q.items)
	return result
}

// Clear removes all items and returns how many there were.
func (q *Queue) Clear() int {
	count := q.Len()
	q.items = make([]QueuedItem, 0)
	return count
}
