package callsession

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aarambhveda/counselor/internal/ai"
)

// fakeRemote is a scriptable conversation session
type fakeRemote struct {
	mu        sync.Mutex
	status    ai.SessionStatus
	speaking  bool
	starts    []ai.StartOptions
	endCalls  int
	startErr  error
	endErr    error
	startGate chan struct{} // when set, StartSession waits for it and ignores ctx
	closed    bool

	events chan ai.SessionEvent
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{status: ai.StatusIdle, events: make(chan ai.SessionEvent, 16)}
}

func (r *fakeRemote) StartSession(ctx context.Context, opts ai.StartOptions) error {
	r.mu.Lock()
	r.starts = append(r.starts, opts)
	gate, err := r.startGate, r.startErr
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	r.setStatus(ai.StatusConnecting)
	return nil
}

func (r *fakeRemote) EndSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endCalls++
	r.status = ai.StatusIdle
	r.speaking = false
	return r.endErr
}

func (r *fakeRemote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	return nil
}

func (r *fakeRemote) Status() ai.SessionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *fakeRemote) IsSpeaking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speaking
}

func (r *fakeRemote) Events() <-chan ai.SessionEvent { return r.events }

func (r *fakeRemote) setStatus(s ai.SessionStatus) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *fakeRemote) setSpeaking(v bool) {
	r.mu.Lock()
	r.speaking = v
	r.mu.Unlock()
}

func (r *fakeRemote) connect() {
	r.setStatus(ai.StatusConnected)
	r.events <- ai.SessionEvent{Kind: ai.EventConnect}
}

func (r *fakeRemote) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts)
}

func (r *fakeRemote) endCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endCalls
}

type fakeMedia struct {
	mu     sync.Mutex
	err    error
	checks []MicConstraints
	order  *[]string
}

func (m *fakeMedia) CheckMicrophone(ctx context.Context, c MicConstraints) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, c)
	if m.order != nil {
		*m.order = append(*m.order, "mic")
	}
	return m.err
}

type fakeCreds struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
	block bool // wait for ctx cancellation
	order *[]string
}

func (f *fakeCreds) FetchSignedURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, "creds")
	}
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.url, f.err
}

func (f *fakeCreds) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeOutput struct {
	mu        sync.Mutex
	suspended bool
	resumes   int
	closed    bool
}

func (o *fakeOutput) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

func (o *fakeOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suspended = false
	o.resumes++
	return nil
}

func (o *fakeOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

func (o *fakeOutput) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

type fakeAudio struct {
	mu      sync.Mutex
	created int
	output  *fakeOutput
	err     error
	order   *[]string
}

func (a *fakeAudio) NewAudioOutput(ctx context.Context) (AudioOutput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.order != nil {
		*a.order = append(*a.order, "audio")
	}
	if a.err != nil {
		return nil, a.err
	}
	a.created++
	return a.output, nil
}

type toastRecorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *toastRecorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

func (r *toastRecorder) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

type snapshotRecorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *snapshotRecorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *snapshotRecorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.snaps))
	for _, s := range r.snaps {
		out = append(out, s.Status)
	}
	return out
}

// fakeClock hands out manually driven tickers and timers
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) lastTicker() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// tick delivers one tick to the latest ticker; it returns false if nobody received it
func (c *fakeClock) tick() bool {
	t := c.lastTicker()
	if t == nil {
		return false
	}
	select {
	case t.ch <- c.now:
		return true
	case <-time.After(200 * time.Millisecond):
		return false
	}
}

// Advance moves time forward and fires due timers synchronously
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

var errMicDenied = errors.New("Permission denied")
