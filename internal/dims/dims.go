// Package dims keeps the process-wide canvas size: the running maximum of
// every frame size seen since startup.
package dims

import "sync"

type Tracker struct {
	mu     sync.Mutex
	width  int
	height int
	frames int
}

func New() *Tracker {
	return &Tracker{}
}

// Observe records a processed frame and returns the processed-frames count
// including this one.
func (t *Tracker) Observe(width, height int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grow(width, height)
	t.frames++
	return t.frames
}

// Update raises the maximum without counting a processed frame.
func (t *Tracker) Update(width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.grow(width, height)
}

func (t *Tracker) Size() (width, height int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *Tracker) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

func (t *Tracker) grow(width, height int) {
	if width > t.width {
		t.width = width
	}
	if height > t.height {
		t.height = height
	}
}
