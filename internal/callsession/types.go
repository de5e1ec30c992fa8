package callsession

import (
	"context"
	"fmt"
	"time"
)

// Status is the call state shown to the user
type Status string

const (
	StatusIdle         Status = "idle"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusSpeaking     Status = "speaking"
	StatusDisconnected Status = "disconnected"
)

// Speaker tags who said a transcript line
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerUser  Speaker = "user"
)

// TranscriptLine is one utterance shown in the live transcript
type TranscriptLine struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

func (l TranscriptLine) String() string {
	if l.Speaker == SpeakerAgent {
		return "🎓 " + l.Text
	}
	return "You: " + l.Text
}

// Toast is a transient user-facing notification
type Toast struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Snapshot is a consistent view of the controller for rendering
type Snapshot struct {
	Status          Status           `json:"status"`
	DurationSeconds int              `json:"duration_seconds"`
	Transcript      []TranscriptLine `json:"transcript"`
	IsSpeaking      bool             `json:"is_speaking"`
	IsConnected     bool             `json:"is_connected"`
	IsConnecting    bool             `json:"is_connecting"`
}

// StatusText renders the one-line call status
func (s Snapshot) StatusText() string {
	switch {
	case s.IsConnecting:
		return "Connecting..."
	case s.IsConnected && s.IsSpeaking:
		return "Speaking... • " + FormatDuration(s.DurationSeconds)
	case s.IsConnected:
		return "Listening... • " + FormatDuration(s.DurationSeconds)
	default:
		return "Ready to call"
	}
}

// FormatDuration renders seconds as MM:SS
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// MicConstraints are the capture hints used when probing the microphone
type MicConstraints struct {
	SampleRate       int
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// MediaDevices grants microphone access
type MediaDevices interface {
	// CheckMicrophone acquires the microphone with the given constraints and releases it
	// straight away. A denied or missing device is an error.
	CheckMicrophone(ctx context.Context, c MicConstraints) error
}

// CredentialSource yields one signed conversation URL per call attempt.
// An empty URL with a nil error is treated as ErrMissingCredential.
type CredentialSource interface {
	FetchSignedURL(ctx context.Context) (string, error)
}

// AudioOutput is the shared playback context for agent audio
type AudioOutput interface {
	Suspended() bool
	Resume() error
	Close() error
}

// AudioOutputFactory creates the playback context on first use
type AudioOutputFactory interface {
	NewAudioOutput(ctx context.Context) (AudioOutput, error)
}

// Notifier shows toasts to the user
type Notifier interface {
	Notify(t Toast)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// Ticker is the subset of time.Ticker the controller needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is the subset of time.Timer the widget needs
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can drive ticks and delays
type Clock interface {
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock
type SystemClock struct{}

type systemTicker struct{ t *time.Ticker }

func (t systemTicker) C() <-chan time.Time { return t.t.C }
func (t systemTicker) Stop()               { t.t.Stop() }

func (SystemClock) NewTicker(d time.Duration) Ticker { return systemTicker{time.NewTicker(d)} }

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
