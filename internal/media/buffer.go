package media

import (
	"sync"
)

// AudioBuffer is a bounded PCM queue between the network and the player.
// When full, the oldest bytes are dropped so playback stays close to live.
type AudioBuffer struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buffer []byte
	cap    int
	closed bool
}

// NewAudioBuffer creates a buffer holding at most fixedCap bytes
func NewAudioBuffer(fixedCap int) *AudioBuffer {
	ab := &AudioBuffer{
		buffer: make([]byte, 0, fixedCap),
		cap:    fixedCap,
	}
	ab.cond = sync.NewCond(&ab.mu)
	return ab
}

// Write queues PCM and reports how many old bytes were dropped to make room
func (ab *AudioBuffer) Write(data []byte) (dropped int) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	if len(data) > ab.cap {
		dropped = len(data) - ab.cap
		data = data[dropped:]
	}
	if over := len(ab.buffer) + len(data) - ab.cap; over > 0 {
		// keep whole 16-bit samples aligned
		if over%2 == 1 {
			over++
		}
		if over > len(ab.buffer) {
			over = len(ab.buffer)
		}
		ab.buffer = append(ab.buffer[:0], ab.buffer[over:]...)
		dropped += over
	}
	ab.buffer = append(ab.buffer, data...)
	ab.cond.Signal()
	return dropped
}

// Read blocks until audio is queued. After Close it yields silence.
func (ab *AudioBuffer) Read(p []byte) (int, error) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	for len(ab.buffer) == 0 && !ab.closed {
		ab.cond.Wait()
	}
	if len(ab.buffer) == 0 {
		clear(p)
		return len(p), nil
	}

	n := copy(p, ab.buffer)
	ab.buffer = append(ab.buffer[:0], ab.buffer[n:]...)
	return n, nil
}

// Len returns the number of queued bytes
func (ab *AudioBuffer) Len() int {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return len(ab.buffer)
}

// Flush discards queued audio
func (ab *AudioBuffer) Flush() {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.buffer = ab.buffer[:0]
}

// Close wakes blocked readers
func (ab *AudioBuffer) Close() {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.closed = true
	ab.cond.Broadcast()
}

// Reopen makes the buffer block on empty again
func (ab *AudioBuffer) Reopen() {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	ab.closed = false
}
