package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aarambhveda/counselor/internal/callsession"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/ebitengine/oto/v3"
)

// Speaker plays agent audio on the default output device.
// oto allows a single context per process, so one Speaker is shared by every call.
type Speaker struct {
	sampleRate int
	channels   int
	logger     *logger.Logger

	mu        sync.Mutex
	ctx       *oto.Context
	player    *oto.Player
	buffer    *AudioBuffer
	suspended bool
	closed    bool
}

// NewSpeaker prepares a speaker; the device is opened on first use
func NewSpeaker(sampleRate, channels int, logger *logger.Logger) *Speaker {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if channels <= 0 {
		channels = 1
	}
	return &Speaker{
		sampleRate: sampleRate,
		channels:   channels,
		logger:     logger.Named("speaker"),
		// two seconds of audio
		buffer: NewAudioBuffer(sampleRate * channels * 2 * 2),
	}
}

// NewAudioOutput opens the output device once and hands back the shared speaker
func (s *Speaker) NewAudioOutput(ctx context.Context) (callsession.AudioOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   s.sampleRate,
			ChannelCount: s.channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   100 * time.Millisecond,
		})
		if err != nil {
			return nil, fmt.Errorf("opening audio output: %w", err)
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.ctx = otoCtx
		s.logger.Info("Audio output ready",
			logger.Int("sample_rate", s.sampleRate),
			logger.Int("channels", s.channels))
	}

	if s.closed {
		// reopened after an unmount; start suspended so the controller resumes it
		s.closed = false
		s.suspended = true
		s.buffer.Reopen()
	}
	if s.player == nil {
		s.player = s.ctx.NewPlayer(s.buffer)
		s.player.Play()
	}
	return s, nil
}

// Suspended reports whether playback is paused
func (s *Speaker) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}

// Resume restarts a suspended output
func (s *Speaker) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return fmt.Errorf("audio output not opened")
	}
	if err := s.ctx.Resume(); err != nil {
		return fmt.Errorf("resuming audio output: %w", err)
	}
	s.suspended = false
	return nil
}

// Write queues agent PCM for playback
func (s *Speaker) Write(p []byte) (int, error) {
	if dropped := s.buffer.Write(p); dropped > 0 {
		s.logger.Debug("Playback buffer overflow", logger.Int("dropped_bytes", dropped))
	}
	return len(p), nil
}

// Flush drops queued audio, used when the agent is interrupted
func (s *Speaker) Flush() {
	s.buffer.Flush()
}

// Close stops playback and suspends the device. The oto context itself lives
// until the process exits.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.buffer.Flush()
	s.buffer.Close()
	if s.player != nil {
		if err := s.player.Close(); err != nil {
			s.logger.Warn("Failed to close player", logger.Error(err))
		}
		s.player = nil
	}
	if s.ctx != nil {
		if err := s.ctx.Suspend(); err != nil {
			return fmt.Errorf("suspending audio output: %w", err)
		}
		s.suspended = true
	}
	return nil
}
