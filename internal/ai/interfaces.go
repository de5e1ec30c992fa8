package ai

import (
	"context"
)

// SignedURLProvider mints a single-use signed websocket URL for a conversational agent.
// Implementations run on the trusted backend since they hold the provider API key.
type SignedURLProvider interface {
	IssueSignedURL(ctx context.Context) (string, error)
}

// SessionStatus is the connection state reported by a conversation session
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusConnecting SessionStatus = "connecting"
	StatusConnected  SessionStatus = "connected"
)

// StartOptions carries what is needed to open a conversation session
type StartOptions struct {
	SignedURL string
}

// ConversationSession is a live voice conversation with a remote agent.
// Lifecycle notifications are delivered on Events in the order they occur.
type ConversationSession interface {
	// StartSession dials the agent. It returns once the transport is open;
	// the Connect event follows when the agent has accepted the conversation.
	StartSession(ctx context.Context, opts StartOptions) error

	// EndSession closes the conversation gracefully
	EndSession(ctx context.Context) error

	// Close releases the session for good. Events is closed afterwards.
	Close() error

	Status() SessionStatus
	IsSpeaking() bool

	Events() <-chan SessionEvent
}

// EventKind identifies a session notification
type EventKind int

const (
	EventConnect EventKind = iota
	EventDisconnect
	EventMessage
	EventModeChange
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventMessage:
		return "message"
	case EventModeChange:
		return "mode_change"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionEvent is a single notification from a conversation session
type SessionEvent struct {
	Kind     EventKind
	Message  *Message // set for EventMessage
	Err      error    // set for EventError
	Reason   string   // set for EventDisconnect
	Speaking bool     // set for EventModeChange
}

// Message types sent by the agent
const (
	MessageConversationInitiation = "conversation_initiation_metadata"
	MessageUserTranscript         = "user_transcript"
	MessageAgentResponse          = "agent_response"
	MessageAgentResponseCorrect   = "agent_response_correction"
	MessageAudio                  = "audio"
	MessageInterruption           = "interruption"
	MessagePing                   = "ping"
	MessageVADScore               = "vad_score"
	MessageClientToolCall         = "client_tool_call"
	MessageInternalTentative      = "internal_tentative_agent_response"
)

// Message is a decoded agent message. Only the payload matching Type is populated.
type Message struct {
	Type string `json:"type"`

	ConversationInitiation *ConversationInitiationEvent `json:"conversation_initiation_metadata_event,omitempty"`
	UserTranscription      *UserTranscriptionEvent      `json:"user_transcription_event,omitempty"`
	AgentResponse          *AgentResponseEvent          `json:"agent_response_event,omitempty"`
	Audio                  *AudioEvent                  `json:"audio_event,omitempty"`
	Interruption           *InterruptionEvent           `json:"interruption_event,omitempty"`
	Ping                   *PingEvent                   `json:"ping_event,omitempty"`
}

type ConversationInitiationEvent struct {
	ConversationID    string `json:"conversation_id"`
	AgentOutputFormat string `json:"agent_output_audio_format"`
	UserInputFormat   string `json:"user_input_audio_format"`
}

type UserTranscriptionEvent struct {
	UserTranscript string `json:"user_transcript"`
}

type AgentResponseEvent struct {
	AgentResponse string `json:"agent_response"`
}

type AudioEvent struct {
	AudioBase64 string `json:"audio_base_64"`
	EventID     int64  `json:"event_id"`
}

type InterruptionEvent struct {
	EventID int64 `json:"event_id"`
}

type PingEvent struct {
	EventID int64 `json:"event_id"`
	PingMs  int64 `json:"ping_ms"`
}
