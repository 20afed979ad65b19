package logsink

import (
	"sync"
	"time"
)

// Entry is one log line as shown to the operator.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// DefaultCapacity bounds the history and the pending queue of a console.
const DefaultCapacity = 5000

// Console queues entries emitted by the worker and moves them into a
// display history when the interactive side calls Drain. Producers only
// take the lock long enough to append to the queue.
//
// History positions are absolute: once the history is full the oldest
// entries are dropped, but a cursor taken earlier keeps pointing at the
// same entry or, if it was dropped, at the oldest one still held.
type Console struct {
	mu       sync.Mutex
	queue    []Entry
	history  []Entry
	dropped  int
	capacity int
	now      func() time.Time
}

// NewConsole creates an empty console holding up to DefaultCapacity entries.
func NewConsole() *Console {
	return NewBoundedConsole(DefaultCapacity)
}

// NewBoundedConsole creates an empty console holding at most capacity
// entries. A non-positive capacity means DefaultCapacity.
func NewBoundedConsole(capacity int) *Console {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Console{capacity: capacity, now: time.Now}
}

// Emit appends an entry to the pending queue, discarding the oldest
// pending entry when the queue is full.
func (c *Console) Emit(level Level, msg string) {
	c.mu.Lock()
	if len(c.queue) >= c.capacity {
		c.queue = c.queue[1:]
	}
	c.queue = append(c.queue, Entry{Time: c.now(), Level: level, Message: msg})
	c.mu.Unlock()
}

// Drain moves all queued entries into the history and returns how many moved.
func (c *Console) Drain() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.queue)
	c.history = append(c.history, c.queue...)
	c.queue = c.queue[:0]
	if over := len(c.history) - c.capacity; over > 0 {
		c.history = append([]Entry(nil), c.history[over:]...)
		c.dropped += over
	}
	return n
}

// Entries returns a copy of the display history.
func (c *Console) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.history...)
}

// Since returns a copy of the history from absolute position n on.
func (c *Console) Since(n int) []Entry {
	entries, _ := c.Read(n)
	return entries
}

// Read returns a copy of the history from absolute position n on, and the
// cursor to pass on the next call.
func (c *Console) Read(n int) ([]Entry, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	end := c.dropped + len(c.history)
	i := max(n-c.dropped, 0)
	if i >= len(c.history) {
		return nil, end
	}
	out := make([]Entry, len(c.history)-i)
	copy(out, c.history[i:])
	return out, end
}

// Len reports the number of entries currently held in the history.
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// Clear empties the display history. Pending entries are kept and
// cursors stay valid.
func (c *Console) Clear() {
	c.mu.Lock()
	c.dropped += len(c.history)
	c.history = nil
	c.mu.Unlock()
}
