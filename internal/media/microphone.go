package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/aarambhveda/counselor/internal/callsession"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/mediadevices/pkg/wave"
)

// ErrNoAudioTrack is returned when the device yields no audio track
var ErrNoAudioTrack = errors.New("no audio track found in microphone stream")

// Microphone grants access to the default capture device through mediadevices.
// A microphone driver must be registered by importing
// github.com/pion/mediadevices/pkg/driver/microphone in the main package.
type Microphone struct {
	constraints callsession.MicConstraints
	logger      *logger.Logger
}

// NewMicrophone creates a microphone using the given capture constraints for streaming
func NewMicrophone(c callsession.MicConstraints, logger *logger.Logger) *Microphone {
	return &Microphone{constraints: c, logger: logger.Named("microphone")}
}

func audioConstraints(c callsession.MicConstraints) mediadevices.MediaOption {
	return func(tc *mediadevices.MediaTrackConstraints) {
		if c.SampleRate > 0 {
			tc.SampleRate = prop.Int(c.SampleRate)
		}
		tc.ChannelCount = prop.Int(1)
		tc.SampleSize = prop.Int(16)
	}
}

func (m *Microphone) open(c callsession.MicConstraints) (mediadevices.MediaStream, error) {
	// Echo cancellation, noise suppression and AGC have no driver-level knobs here
	m.logger.Debug("Requesting microphone",
		logger.Int("sample_rate", c.SampleRate),
		logger.Bool("echo_cancellation", c.EchoCancellation),
		logger.Bool("noise_suppression", c.NoiseSuppression),
		logger.Bool("auto_gain_control", c.AutoGainControl))

	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Audio: audioConstraints(c),
		Codec: mediadevices.NewCodecSelector(),
	})
	if err != nil {
		return nil, fmt.Errorf("Microphone access denied: %w", err)
	}
	if len(stream.GetAudioTracks()) == 0 {
		return nil, ErrNoAudioTrack
	}
	return stream, nil
}

// CheckMicrophone opens the microphone and immediately releases every track
func (m *Microphone) CheckMicrophone(ctx context.Context, c callsession.MicConstraints) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stream, err := m.open(c)
	if err != nil {
		m.logger.Warn("Microphone check failed", logger.Error(err))
		return err
	}
	for _, t := range stream.GetTracks() {
		if err := t.Close(); err != nil {
			m.logger.Warn("Failed to release microphone track", logger.Error(err))
		}
	}
	m.logger.Info("Microphone access granted")
	return nil
}

// Stream captures 16-bit little endian PCM and hands each chunk to send until
// ctx is done or send fails.
func (m *Microphone) Stream(ctx context.Context, send func(pcm []byte) error) error {
	stream, err := m.open(m.constraints)
	if err != nil {
		return err
	}
	track := stream.GetAudioTracks()[0]
	defer track.Close()

	audioTrack, ok := track.(*mediadevices.AudioTrack)
	if !ok {
		return fmt.Errorf("unexpected track type %T", track)
	}
	reader := audioTrack.NewReader(false)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		chunk, release, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading microphone: %w", err)
		}
		pcm := encodePCM(chunk)
		release()
		if len(pcm) == 0 {
			continue
		}
		if err := send(pcm); err != nil {
			return err
		}
	}
}

// encodePCM flattens a captured chunk to interleaved int16 little endian bytes.
// Unsupported sample layouts yield nil.
func encodePCM(chunk wave.Audio) []byte {
	switch a := chunk.(type) {
	case *wave.Int16Interleaved:
		return int16ToBytes(a.Data)
	case *wave.Float32Interleaved:
		samples := make([]int16, len(a.Data))
		for i, f := range a.Data {
			samples[i] = floatToInt16(f)
		}
		return int16ToBytes(samples)
	default:
		return nil
	}
}

func floatToInt16(f float32) int16 {
	switch {
	case f >= 1:
		return 32767
	case f <= -1:
		return -32768
	default:
		return int16(f * 32767)
	}
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
