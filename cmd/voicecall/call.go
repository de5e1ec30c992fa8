package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aarambhveda/counselor/internal/ai/elevenlabs"
	"github.com/aarambhveda/counselor/internal/callsession"
	"github.com/aarambhveda/counselor/internal/config"
	"github.com/aarambhveda/counselor/internal/functions"
	"github.com/aarambhveda/counselor/internal/media"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/spf13/cobra"

	// registers the default audio capture driver
	_ "github.com/pion/mediadevices/pkg/driver/microphone"
)

func newCallCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "call",
		Short: "Open the call widget (c = call, e = end, q = quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), *configPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// terminal renders controller snapshots and toasts as plain lines
type terminal struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func (t *terminal) render(s callsession.Snapshot) {
	var b strings.Builder
	b.WriteString("[" + s.StatusText() + "]\n")
	for _, line := range s.Transcript {
		b.WriteString("  " + line.String() + "\n")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if b.String() == t.last {
		return
	}
	t.last = b.String()
	fmt.Fprint(t.out, t.last)
}

func (t *terminal) Notify(toast callsession.Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "!! %s: %s\n", toast.Title, toast.Description)
}

func (t *terminal) println(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, msg)
}

// micPump streams microphone audio into the live session while connected
type micPump struct {
	mic    *media.Microphone
	logger *logger.Logger

	mu      sync.Mutex
	session *elevenlabs.Session
	cancel  context.CancelFunc
}

func (p *micPump) setSession(s *elevenlabs.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.session = s
}

func (p *micPump) update(connected bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case connected && p.cancel == nil && p.session != nil:
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		session := p.session
		go func() {
			err := p.mic.Stream(ctx, session.SendUserAudio)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, elevenlabs.ErrNotConnected) {
				p.logger.Warn("Microphone stream stopped", logger.Error(err))
			}
		}()
	case !connected && p.cancel != nil:
		p.cancel()
		p.cancel = nil
	}
}

func runCall(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	cfg, log, err := loadClientConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	term := &terminal{out: out}
	widget := newWidget(cfg, log, term)
	defer widget.Shutdown()

	term.println("Aarambh Veda counselor. Commands: c = call, e = end, q = quit")
	term.render(callsession.Snapshot{Status: callsession.StatusIdle})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			switch strings.ToLower(line) {
			case "c", "call":
				ctrl := widget.Open()
				go func() {
					if err := ctrl.StartCall(ctx); err != nil {
						log.Debug("Call did not start", logger.Error(err))
					}
				}()
			case "e", "end":
				if ctrl := widget.Controller(); ctrl != nil {
					endCtx, cancel := context.WithTimeout(ctx, cfg.Call.EndSessionTimeout()+time.Second)
					ctrl.EndCall(endCtx)
					cancel()
				}
			case "q", "quit", "exit":
				return nil
			case "":
			default:
				term.println("Unknown command " + line + " (c = call, e = end, q = quit)")
			}
		}
	}
}

func newWidget(cfg *config.Config, log *logger.Logger, term *terminal) *callsession.Widget {
	fnClient := functions.NewClient(
		cfg.Functions.BaseURL,
		cfg.Functions.AnonKey,
		time.Duration(cfg.Functions.TimeoutSeconds)*time.Second,
		log,
	)
	credentials := functions.NewSignedURLSource(fnClient)

	constraints := callsession.MicConstraints{
		SampleRate:       cfg.Call.Microphone.SampleRate,
		EchoCancellation: cfg.Call.Microphone.EchoCancellation,
		NoiseSuppression: cfg.Call.Microphone.NoiseSuppression,
		AutoGainControl:  cfg.Call.Microphone.AutoGainControl,
	}
	mic := media.NewMicrophone(constraints, log)
	speaker := media.NewSpeaker(cfg.Call.AudioOutput.SampleRate, cfg.Call.AudioOutput.ChannelCount, log)
	pump := &micPump{mic: mic, logger: log.Named("mic-pump")}

	factory := func(onClose func()) *callsession.Controller {
		session := elevenlabs.NewSession(elevenlabs.SessionConfig{
			AudioSink:        speaker,
			OutputSampleRate: cfg.Call.AudioOutput.SampleRate,
			OutputChannels:   cfg.Call.AudioOutput.ChannelCount,
		}, log)
		pump.setSession(session)

		return callsession.NewController(callsession.Options{
			Remote:            session,
			Credentials:       credentials,
			Media:             mic,
			Audio:             speaker,
			Notifier:          term,
			Microphone:        constraints,
			TranscriptLimit:   cfg.Call.TranscriptLimit,
			TickInterval:      cfg.Call.TickInterval(),
			EndSessionTimeout: cfg.Call.EndSessionTimeout(),
			OnClose:           onClose,
			OnChange: func(s callsession.Snapshot) {
				pump.update(s.IsConnected)
				term.render(s)
			},
		}, log)
	}

	return callsession.NewWidget(factory, callsession.SystemClock{}, cfg.Call.UnmountDelay(), log)
}
