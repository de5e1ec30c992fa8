// Package callsession drives a single voice call with the counselor agent:
// microphone check, credential fetch, remote session lifecycle, the duration
// counter and the rolling transcript.
package callsession

import (
	"context"
	"sync"
	"time"

	"github.com/aarambhveda/counselor/internal/ai"
	"github.com/aarambhveda/counselor/pkg/logger"
)

// Options wires a Controller to its collaborators
type Options struct {
	Remote      ai.ConversationSession // owned by the controller from now on
	Credentials CredentialSource
	Media       MediaDevices
	Audio       AudioOutputFactory
	Notifier    Notifier
	Clock       Clock

	Microphone        MicConstraints
	TranscriptLimit   int
	TickInterval      time.Duration
	EndSessionTimeout time.Duration

	OnClose  func()         // invoked after EndCall
	OnChange func(Snapshot) // invoked after every visible state change
}

// Controller is the state machine behind the call widget.
// At most one call is active at a time.
type Controller struct {
	opts   Options
	logger *logger.Logger

	mu          sync.Mutex
	connecting  bool
	starting    bool   // a start sequence is running
	attempt     uint64 // bumped by StartCall and EndCall
	cancelStart context.CancelFunc
	duration    int
	transcript  *transcript
	audio       AudioOutput
	tickerStop  chan struct{}
	unmounted   bool

	notifyMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller and starts consuming remote session events
func NewController(opts Options, logger *logger.Logger) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Toast) {})
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.EndSessionTimeout <= 0 {
		opts.EndSessionTimeout = 5 * time.Second
	}
	if opts.Microphone.SampleRate == 0 {
		opts.Microphone = MicConstraints{SampleRate: 16000, EchoCancellation: true, NoiseSuppression: true, AutoGainControl: true}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		opts:       opts,
		logger:     logger.Named("call"),
		transcript: newTranscript(opts.TranscriptLimit),
		ctx:        ctx,
		cancel:     cancel,
	}

	c.wg.Add(1)
	go c.eventLoop()

	return c
}

// StartCall runs the start sequence: audio output, microphone check, credential, remote session.
// Failures are classified as *CallError, reported with exactly one toast, and leave the call idle.
func (c *Controller) StartCall(ctx context.Context) error {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return ErrUnmounted
	}
	if c.starting || c.connecting || c.opts.Remote.Status() != ai.StatusIdle {
		c.mu.Unlock()
		return ErrCallInProgress
	}

	// The attempt ends with the caller's context, the controller's lifetime or EndCall
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	c.attempt++
	attempt := c.attempt
	c.starting = true
	c.connecting = true
	c.cancelStart = cancel
	c.duration = 0
	c.transcript.clear()
	c.mu.Unlock()
	c.notifyChange()

	err := c.start(ctx)

	c.mu.Lock()
	unmounted := c.unmounted
	hungUp := c.attempt != attempt
	c.starting = false
	c.cancelStart = nil
	if err != nil && !hungUp {
		c.connecting = false
	}
	c.mu.Unlock()

	if unmounted {
		if err == nil {
			// The session opened after teardown; hang up without touching state
			c.endRemote()
			return ErrUnmounted
		}
		return err
	}

	if hungUp {
		if err == nil {
			c.endRemote()
		}
		c.logger.Info("Call ended before it connected")
		return ErrCallEnded
	}

	if err != nil {
		c.logger.Warn("Call failed to start", logger.Error(err))
		description := err.Error()
		if description == "" {
			description = callFailedFallback
		}
		c.opts.Notifier.Notify(Toast{Variant: toastVariant, Title: callFailedTitle, Description: description})
		c.notifyChange()
		return err
	}

	c.logger.Info("Call session opened")
	return nil
}

func (c *Controller) start(ctx context.Context) error {
	if err := c.ensureAudio(ctx); err != nil {
		return &CallError{Kind: SessionStartFailed, Err: err}
	}

	if err := c.opts.Media.CheckMicrophone(ctx, c.opts.Microphone); err != nil {
		return &CallError{Kind: PermissionDenied, Err: err}
	}

	signedURL, err := c.opts.Credentials.FetchSignedURL(ctx)
	if err != nil {
		return &CallError{Kind: CredentialFetchFailed, Err: err}
	}
	if signedURL == "" {
		return &CallError{Kind: CredentialFetchFailed, Err: ErrMissingCredential}
	}

	if err := c.opts.Remote.StartSession(ctx, ai.StartOptions{SignedURL: signedURL}); err != nil {
		return &CallError{Kind: SessionStartFailed, Err: err}
	}
	return nil
}

// ensureAudio creates the shared audio output once and resumes it when suspended
func (c *Controller) ensureAudio(ctx context.Context) error {
	if c.opts.Audio == nil {
		return nil
	}

	c.mu.Lock()
	out := c.audio
	c.mu.Unlock()

	if out == nil {
		created, err := c.opts.Audio.NewAudioOutput(ctx)
		if err != nil {
			return err
		}
		c.mu.Lock()
		if c.audio == nil {
			c.audio = created
		}
		out = c.audio
		c.mu.Unlock()
	}

	if out.Suspended() {
		return out.Resume()
	}
	return nil
}

// EndCall hangs up, abandoning a start that is still in flight. A failure to close
// the remote session is logged only; the call returns to idle and OnClose runs regardless.
func (c *Controller) EndCall(ctx context.Context) {
	c.mu.Lock()
	c.attempt++
	c.connecting = false
	if c.cancelStart != nil {
		c.cancelStart()
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opts.EndSessionTimeout)
	defer cancel()

	if err := c.opts.Remote.EndSession(ctx); err != nil {
		c.logger.Error("Error ending call", logger.Error(err))
	}

	c.mu.Lock()
	c.stopTickerLocked()
	c.duration = 0
	c.transcript.clear()
	c.mu.Unlock()
	c.notifyChange()

	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}
}

// HandleMessage appends agent responses and user transcripts to the transcript.
// Any other message type is ignored.
func (c *Controller) HandleMessage(msg ai.Message) {
	var line TranscriptLine
	switch msg.Type {
	case ai.MessageAgentResponse:
		if msg.AgentResponse == nil || msg.AgentResponse.AgentResponse == "" {
			return
		}
		line = TranscriptLine{Speaker: SpeakerAgent, Text: msg.AgentResponse.AgentResponse}
	case ai.MessageUserTranscript:
		if msg.UserTranscription == nil || msg.UserTranscription.UserTranscript == "" {
			return
		}
		line = TranscriptLine{Speaker: SpeakerUser, Text: msg.UserTranscription.UserTranscript}
	default:
		return
	}

	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.transcript.add(line)
	c.mu.Unlock()
	c.notifyChange()
}

// Snapshot returns the current view state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	remote := c.opts.Remote.Status()
	speaking := c.opts.Remote.IsSpeaking()

	s := Snapshot{
		DurationSeconds: c.duration,
		Transcript:      c.transcript.snapshot(),
		IsSpeaking:      speaking,
		IsConnected:     remote == ai.StatusConnected,
		IsConnecting:    c.connecting,
	}
	switch {
	case c.connecting:
		s.Status = StatusConnecting
	case remote == ai.StatusConnected && speaking:
		s.Status = StatusSpeaking
	case remote == ai.StatusConnected:
		s.Status = StatusConnected
	case remote == ai.StatusConnecting:
		s.Status = StatusConnecting
	default:
		s.Status = StatusIdle
	}
	return s
}

// Close unmounts the controller: any in-flight StartCall is cancelled, a live
// session is ended, the audio output is closed and no further state changes happen.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return nil
	}
	c.unmounted = true
	c.stopTickerLocked()
	audio := c.audio
	c.audio = nil
	c.mu.Unlock()

	c.cancel()

	if c.opts.Remote.Status() != ai.StatusIdle {
		c.endRemote()
	}
	err := c.opts.Remote.Close()
	c.wg.Wait()

	if audio != nil {
		if cerr := audio.Close(); cerr != nil {
			c.logger.Warn("Failed to close audio output", logger.Error(cerr))
		}
	}
	return err
}

func (c *Controller) endRemote() {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.EndSessionTimeout)
	defer cancel()
	if err := c.opts.Remote.EndSession(ctx); err != nil {
		c.logger.Warn("Failed to end abandoned session", logger.Error(err))
	}
}

func (c *Controller) eventLoop() {
	defer c.wg.Done()

	events := c.opts.Remote.Events()
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) handleEvent(ev ai.SessionEvent) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	switch ev.Kind {
	case ai.EventConnect:
		c.logger.Info("Connected to counselor")
		c.mu.Lock()
		c.connecting = false
		c.duration = 0
		c.startTickerLocked()
		c.mu.Unlock()
		c.notifyChange()

	case ai.EventDisconnect:
		c.logger.Info("Disconnected from counselor", logger.String("reason", ev.Reason))
		c.mu.Lock()
		// the session may close before it ever reports connected; a late event from an
		// earlier session must not release a start that is still running
		if !c.starting {
			c.connecting = false
		}
		c.stopTickerLocked()
		c.duration = 0
		c.mu.Unlock()
		c.notifyDisconnected()

	case ai.EventMessage:
		if ev.Message != nil {
			c.HandleMessage(*ev.Message)
		}

	case ai.EventModeChange:
		c.notifyChange()

	case ai.EventError:
		c.logger.Error("Conversation error", logger.Error(ev.Err))
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
		c.opts.Notifier.Notify(Toast{Variant: toastVariant, Title: connectionErrorTitle, Description: connectionErrorMessage})
		c.notifyChange()
	}
}

// startTickerLocked starts the duration counter; c.mu must be held
func (c *Controller) startTickerLocked() {
	if c.tickerStop != nil {
		return
	}
	stop := make(chan struct{})
	c.tickerStop = stop
	ticker := c.opts.Clock.NewTicker(c.opts.TickInterval)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-c.ctx.Done():
				return
			case <-ticker.C():
				c.tick()
			}
		}
	}()
}

// stopTickerLocked stops the duration counter; c.mu must be held
func (c *Controller) stopTickerLocked() {
	if c.tickerStop != nil {
		close(c.tickerStop)
		c.tickerStop = nil
	}
}

func (c *Controller) tick() {
	c.mu.Lock()
	if c.unmounted || c.connecting || c.tickerStop == nil || c.opts.Remote.Status() != ai.StatusConnected {
		c.mu.Unlock()
		return
	}
	c.duration++
	c.mu.Unlock()
	c.notifyChange()
}

func (c *Controller) notifyChange() {
	if c.opts.OnChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.opts.OnChange(snap)
}

// notifyDisconnected publishes the momentary disconnected state, then the idle state
func (c *Controller) notifyDisconnected() {
	if c.opts.OnChange == nil {
		return
	}
	c.notifyMu.Lock()
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	snap.Status = StatusDisconnected
	c.opts.OnChange(snap)
	c.notifyMu.Unlock()

	c.notifyChange()
}

// IsUnmounted reports whether Close has run
func (c *Controller) IsUnmounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmounted
}
