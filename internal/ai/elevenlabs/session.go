package elevenlabs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aarambhveda/counselor/internal/ai"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

var (
	// ErrSessionActive is returned when StartSession is called on a live session
	ErrSessionActive = errors.New("conversation session already active")
	// ErrSessionClosed is returned after Close
	ErrSessionClosed = errors.New("conversation session closed")
	// ErrNotConnected is returned when sending audio without a connected conversation
	ErrNotConnected = errors.New("conversation not connected")
)

const (
	modeCheckInterval = 50 * time.Millisecond
	closeWriteTimeout = 2 * time.Second
)

// SessionConfig configures a conversation session
type SessionConfig struct {
	// AudioSink receives decoded agent audio (signed 16-bit little endian PCM). Optional.
	// A sink with a Flush method is flushed when the user interrupts the agent.
	AudioSink io.Writer
	// OutputSampleRate and OutputChannels describe the agent audio format and are
	// used to estimate how long the agent keeps speaking after each chunk.
	OutputSampleRate int
	OutputChannels   int
	HandshakeTimeout time.Duration
	EventBuffer      int
}

// Session is a websocket conversation with an ElevenLabs agent.
// A Session can run several conversations one after another until Close.
type Session struct {
	cfg    SessionConfig
	dialer websocket.Dialer
	logger *logger.Logger

	mu             sync.Mutex
	conn           *websocket.Conn
	connDone       chan struct{}
	status         ai.SessionStatus
	speaking       bool
	speakingUntil  time.Time
	ending         bool
	conversationID string
	closed         bool

	writeMu sync.Mutex

	events    chan ai.SessionEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	now func() time.Time
}

// NewSession creates an idle conversation session
func NewSession(cfg SessionConfig, logger *logger.Logger) *Session {
	if cfg.OutputSampleRate <= 0 {
		cfg.OutputSampleRate = 16000
	}
	if cfg.OutputChannels <= 0 {
		cfg.OutputChannels = 1
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 30 * time.Second
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}

	return &Session{
		cfg:    cfg,
		dialer: websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		logger: logger.Named("convai"),
		status: ai.StatusIdle,
		events: make(chan ai.SessionEvent, cfg.EventBuffer),
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Events returns the notification channel. It is closed by Close.
func (s *Session) Events() <-chan ai.SessionEvent {
	return s.events
}

// Status reports the connection state
func (s *Session) Status() ai.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsSpeaking reports whether agent audio is still playing out
func (s *Session) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// ConversationID returns the id assigned by the agent for the current conversation
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// StartSession dials the signed URL. Connect is emitted once the agent sends its
// initiation metadata.
func (s *Session) StartSession(ctx context.Context, opts ai.StartOptions) error {
	if opts.SignedURL == "" {
		return fmt.Errorf("signed url is required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.status != ai.StatusIdle {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.status = ai.StatusConnecting
	s.mu.Unlock()

	conn, _, err := s.dialer.DialContext(ctx, toWebSocketURL(opts.SignedURL), http.Header{})
	if err != nil {
		s.mu.Lock()
		s.status = ai.StatusIdle
		s.mu.Unlock()
		return fmt.Errorf("dialing conversation: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return ErrSessionClosed
	}
	connDone := make(chan struct{})
	s.conn = conn
	s.connDone = connDone
	s.ending = false
	s.speaking = false
	s.conversationID = ""
	s.wg.Add(2)
	s.mu.Unlock()

	go s.readLoop(conn, connDone)
	go s.modeLoop(connDone)

	s.logger.Info("Conversation transport open")
	return nil
}

// EndSession sends a normal close frame and waits for the agent to acknowledge it
func (s *Session) EndSession(ctx context.Context) error {
	s.mu.Lock()
	conn, connDone := s.conn, s.connDone
	if conn == nil {
		s.mu.Unlock()
		return nil
	}
	s.ending = true
	s.mu.Unlock()

	deadline := time.Now().Add(closeWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		_ = conn.Close()
		return fmt.Errorf("sending close frame: %w", err)
	}

	select {
	case <-connDone:
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}
}

// SendUserAudio streams a chunk of 16 kHz mono PCM captured from the user
func (s *Session) SendUserAudio(pcm []byte) error {
	if s.Status() != ai.StatusConnected {
		return ErrNotConnected
	}
	return s.writeJSON(map[string]string{
		"user_audio_chunk": base64.StdEncoding.EncodeToString(pcm),
	})
}

// Close tears down any live conversation and closes Events
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		conn := s.conn
		s.mu.Unlock()

		close(s.done)
		if conn != nil {
			_ = conn.Close()
		}
		s.wg.Wait()
		close(s.events)
	})
	return nil
}

func (s *Session) emit(ev ai.SessionEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) writeJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) readLoop(conn *websocket.Conn, connDone chan struct{}) {
	defer s.wg.Done()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.finish(conn, connDone, err)
			return
		}

		var msg ai.Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("Skipping undecodable message", logger.Error(err))
			continue
		}
		s.handleMessage(&msg)
	}
}

func (s *Session) handleMessage(msg *ai.Message) {
	switch msg.Type {
	case ai.MessageConversationInitiation:
		s.mu.Lock()
		if msg.ConversationInitiation != nil {
			s.conversationID = msg.ConversationInitiation.ConversationID
		}
		s.status = ai.StatusConnected
		id := s.conversationID
		s.mu.Unlock()
		s.logger.Info("Conversation started", logger.String("conversation_id", id))
		s.emit(ai.SessionEvent{Kind: ai.EventConnect})

	case ai.MessagePing:
		if msg.Ping == nil {
			return
		}
		if err := s.writeJSON(map[string]any{"type": "pong", "event_id": msg.Ping.EventID}); err != nil {
			s.logger.Warn("Failed to answer ping", logger.Error(err))
		}

	case ai.MessageAudio:
		if msg.Audio == nil {
			return
		}
		s.handleAudio(msg.Audio)

	case ai.MessageInterruption:
		if f, ok := s.cfg.AudioSink.(interface{ Flush() }); ok {
			f.Flush()
		}
		s.setSpeaking(false)
		s.emit(ai.SessionEvent{Kind: ai.EventMessage, Message: msg})

	default:
		s.emit(ai.SessionEvent{Kind: ai.EventMessage, Message: msg})
	}
}

func (s *Session) handleAudio(ev *ai.AudioEvent) {
	pcm, err := base64.StdEncoding.DecodeString(ev.AudioBase64)
	if err != nil {
		s.logger.Debug("Dropping invalid audio chunk", logger.Int64("event_id", ev.EventID), logger.Error(err))
		return
	}
	if s.cfg.AudioSink != nil {
		if _, err := s.cfg.AudioSink.Write(pcm); err != nil {
			s.logger.Warn("Audio sink write failed", logger.Error(err))
		}
	}

	bytesPerSecond := s.cfg.OutputSampleRate * s.cfg.OutputChannels * 2
	playFor := time.Duration(len(pcm)) * time.Second / time.Duration(bytesPerSecond)

	s.mu.Lock()
	now := s.now()
	if s.speakingUntil.Before(now) {
		s.speakingUntil = now
	}
	s.speakingUntil = s.speakingUntil.Add(playFor)
	s.mu.Unlock()

	s.setSpeaking(true)
}

func (s *Session) setSpeaking(speaking bool) {
	s.mu.Lock()
	changed := s.speaking != speaking
	s.speaking = speaking
	if !speaking {
		s.speakingUntil = time.Time{}
	}
	s.mu.Unlock()

	if changed {
		s.emit(ai.SessionEvent{Kind: ai.EventModeChange, Speaking: speaking})
	}
}

// modeLoop flips back to listening once the buffered agent audio has played out
func (s *Session) modeLoop(connDone chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(modeCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-connDone:
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			expired := s.speaking && s.now().After(s.speakingUntil)
			s.mu.Unlock()
			if expired {
				s.setSpeaking(false)
			}
		}
	}
}

func (s *Session) finish(conn *websocket.Conn, connDone chan struct{}, readErr error) {
	_ = conn.Close()

	s.mu.Lock()
	ending := s.ending
	wasSpeaking := s.speaking
	if s.conn == conn {
		s.conn = nil
		s.connDone = nil
	}
	s.status = ai.StatusIdle
	s.speaking = false
	s.speakingUntil = time.Time{}
	closed := s.closed
	s.mu.Unlock()
	close(connDone)

	if closed {
		return
	}

	if wasSpeaking {
		s.emit(ai.SessionEvent{Kind: ai.EventModeChange, Speaking: false})
	}

	reason := "agent"
	switch {
	case ending:
		reason = "user"
	case websocket.IsCloseError(readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway):
	default:
		reason = "error"
		s.logger.Warn("Conversation closed unexpectedly", logger.Error(readErr))
		s.emit(ai.SessionEvent{Kind: ai.EventError, Err: fmt.Errorf("conversation connection lost: %w", readErr)})
	}

	s.logger.Info("Conversation ended", logger.String("reason", reason))
	s.emit(ai.SessionEvent{Kind: ai.EventDisconnect, Reason: reason})
}

// toWebSocketURL maps http(s) URLs to ws(s); signed URLs are normally already wss
func toWebSocketURL(raw string) string {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	default:
		return raw
	}
}
