package elevenlabs

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aarambhveda/counselor/internal/ai"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initiation = `{"type":"conversation_initiation_metadata","conversation_initiation_metadata_event":{"conversation_id":"conv_1","agent_output_audio_format":"pcm_16000","user_input_audio_format":"pcm_16000"}}`

func agentServer(t *testing.T, script func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func nextEvent(t *testing.T, s *Session) ai.SessionEvent {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return ai.SessionEvent{}
	}
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestSession_ConnectMessagePingAndEnd(t *testing.T) {
	pongs := make(chan string, 1)
	srv := agentServer(t, func(conn *websocket.Conn) {
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(initiation)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"agent_response","agent_response_event":{"agent_response":"Hello!"}}`)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping","ping_event":{"event_id":7,"ping_ms":20}}`)))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			pongs <- string(data)
		}
	})

	s := NewSession(SessionConfig{}, logger.NewNop())
	defer s.Close()

	require.NoError(t, s.StartSession(context.Background(), ai.StartOptions{SignedURL: srv.URL}))

	ev := nextEvent(t, s)
	assert.Equal(t, ai.EventConnect, ev.Kind)
	assert.Equal(t, ai.StatusConnected, s.Status())
	assert.Equal(t, "conv_1", s.ConversationID())

	ev = nextEvent(t, s)
	require.Equal(t, ai.EventMessage, ev.Kind)
	assert.Equal(t, ai.MessageAgentResponse, ev.Message.Type)
	assert.Equal(t, "Hello!", ev.Message.AgentResponse.AgentResponse)

	select {
	case pong := <-pongs:
		assert.JSONEq(t, `{"type":"pong","event_id":7}`, pong)
	case <-time.After(2 * time.Second):
		t.Fatal("no pong")
	}

	err := s.StartSession(context.Background(), ai.StartOptions{SignedURL: srv.URL})
	assert.ErrorIs(t, err, ErrSessionActive)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.EndSession(ctx))

	ev = nextEvent(t, s)
	assert.Equal(t, ai.EventDisconnect, ev.Kind)
	assert.Equal(t, "user", ev.Reason)
	assert.Equal(t, ai.StatusIdle, s.Status())
}

func TestSession_UnexpectedCloseReportsErrorThenDisconnect(t *testing.T) {
	srv := agentServer(t, func(conn *websocket.Conn) {
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(initiation)))
		time.Sleep(20 * time.Millisecond)
		// drop the TCP connection without a close frame
		_ = conn.UnderlyingConn().Close()
	})

	s := NewSession(SessionConfig{}, logger.NewNop())
	defer s.Close()
	require.NoError(t, s.StartSession(context.Background(), ai.StartOptions{SignedURL: srv.URL}))

	assert.Equal(t, ai.EventConnect, nextEvent(t, s).Kind)

	ev := nextEvent(t, s)
	require.Equal(t, ai.EventError, ev.Kind)
	assert.Error(t, ev.Err)

	ev = nextEvent(t, s)
	assert.Equal(t, ai.EventDisconnect, ev.Kind)
	assert.Equal(t, "error", ev.Reason)
}

func TestSession_AudioDrivesSpeakingMode(t *testing.T) {
	chunk := make([]byte, 3200) // 100ms of 16 kHz mono PCM
	audio := `{"type":"audio","audio_event":{"audio_base_64":"` + base64.StdEncoding.EncodeToString(chunk) + `","event_id":1}}`

	srv := agentServer(t, func(conn *websocket.Conn) {
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(initiation)))
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(audio)))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sink := &safeBuffer{}
	s := NewSession(SessionConfig{AudioSink: sink}, logger.NewNop())
	defer s.Close()
	require.NoError(t, s.StartSession(context.Background(), ai.StartOptions{SignedURL: srv.URL}))

	assert.Equal(t, ai.EventConnect, nextEvent(t, s).Kind)

	ev := nextEvent(t, s)
	require.Equal(t, ai.EventModeChange, ev.Kind)
	assert.True(t, ev.Speaking)
	assert.Equal(t, len(chunk), sink.Len())

	ev = nextEvent(t, s)
	require.Equal(t, ai.EventModeChange, ev.Kind)
	assert.False(t, ev.Speaking)
	assert.False(t, s.IsSpeaking())
}

func TestSession_SendUserAudio(t *testing.T) {
	got := make(chan string, 1)
	srv := agentServer(t, func(conn *websocket.Conn) {
		assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(initiation)))
		_, data, err := conn.ReadMessage()
		if err == nil {
			got <- string(data)
		}
	})

	s := NewSession(SessionConfig{}, logger.NewNop())
	defer s.Close()

	assert.ErrorIs(t, s.SendUserAudio([]byte{1, 2}), ErrNotConnected)

	require.NoError(t, s.StartSession(context.Background(), ai.StartOptions{SignedURL: srv.URL}))
	assert.Equal(t, ai.EventConnect, nextEvent(t, s).Kind)

	require.NoError(t, s.SendUserAudio([]byte{1, 2, 3}))
	select {
	case msg := <-got:
		assert.JSONEq(t, `{"user_audio_chunk":"AQID"}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no audio chunk received")
	}
}

func TestSession_CloseClosesEvents(t *testing.T) {
	s := NewSession(SessionConfig{}, logger.NewNop())
	require.NoError(t, s.Close())

	_, ok := <-s.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, s.StartSession(context.Background(), ai.StartOptions{SignedURL: "ws://x"}), ErrSessionClosed)
}

func TestToWebSocketURL(t *testing.T) {
	assert.Equal(t, "wss://a/b?c=d", toWebSocketURL("https://a/b?c=d"))
	assert.Equal(t, "ws://a", toWebSocketURL("http://a"))
	assert.Equal(t, "wss://a", toWebSocketURL("wss://a"))
}
