package model

import "sync"

// MaxWalkingSteps caps the number of queued tiles.
const MaxWalkingSteps = 50

// WalkingQueue holds the tiles an actor will step through, one (walking) or
// two (running) per tick. Waypoints are expanded into single-tile steps.
//
// Thread-safe: uses Mutex for concurrent access.
type WalkingQueue struct {
	mu      sync.Mutex
	steps   []Position
	running bool
}

// NewWalkingQueue creates an empty queue.
func NewWalkingQueue() *WalkingQueue {
	return &WalkingQueue{steps: make([]Position, 0, MaxWalkingSteps)}
}

// SetPath replaces the queue with a path from start through waypoints.
// Straight or diagonal segments between waypoints are interpolated; steps past
// MaxWalkingSteps are dropped.
func (q *WalkingQueue) SetPath(start Position, waypoints []Position, run bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.steps = q.steps[:0]
	q.running = run

	last := start
	for _, wp := range waypoints {
		wp.Plane = start.Plane
		for last.X != wp.X || last.Y != wp.Y {
			if len(q.steps) == MaxWalkingSteps {
				return
			}
			last = last.Translate(sign(wp.X-last.X), sign(wp.Y-last.Y))
			q.steps = append(q.steps, last)
		}
	}
}

// Next pops the next step taken from current. An empty queue or a step that is
// not adjacent to current returns current and DirNone; the latter also clears
// the queue.
func (q *WalkingQueue) Next(current Position) (Position, Direction) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.steps) == 0 {
		return current, DirNone
	}
	step := q.steps[0]
	q.steps = q.steps[1:]

	dx, dy := current.Delta(step)
	if abs(dx) > 1 || abs(dy) > 1 {
		q.steps = q.steps[:0]
		return current, DirNone
	}
	dir := DirectionOf(dx, dy)
	if dir == DirNone {
		return current, DirNone
	}
	return current.Translate(dx, dy), dir
}

// Running reports whether the actor takes two steps per tick.
func (q *WalkingQueue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// SetRunning toggles running for the remaining path.
func (q *WalkingQueue) SetRunning(run bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.running = run
}

// Len returns the number of queued steps.
func (q *WalkingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.steps)
}

// Clear drops all queued steps.
func (q *WalkingQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.steps = q.steps[:0]
}
