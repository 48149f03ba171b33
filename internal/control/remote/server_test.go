package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cwbudde/algo-iirfilter/dsp/param"
)

func newTestServer(t *testing.T) (*Server, *param.Store, *httptest.Server) {
	t.Helper()

	store := param.NewDefaultStore()

	s, err := New(store)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})

	return s, store, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	return msg
}

func value(v float64) *float64 { return &v }

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil store")
	}

	store := param.NewDefaultStore()

	if _, err := New(store, WithLogger(nil)); err == nil {
		t.Fatal("expected error for nil logger")
	}

	if _, err := New(store, WithSendBuffer(0)); err == nil {
		t.Fatal("expected error for empty send buffer")
	}
}

func TestInitialState(t *testing.T) {
	_, store, ts := newTestServer(t)
	_ = store.Set(param.CutoffID, 1234)

	conn := dial(t, ts)

	msg := readMessage(t, conn)
	if msg.Type != TypeState {
		t.Fatalf("first message type = %q, want state", msg.Type)
	}

	if msg.Params[param.CutoffID] != 1234 || msg.Params[param.ResonanceID] != 1 {
		t.Fatalf("params = %v", msg.Params)
	}
}

func TestSetBroadcastsToAllClients(t *testing.T) {
	s, store, ts := newTestServer(t)

	a := dial(t, ts)
	b := dial(t, ts)

	readMessage(t, a)
	readMessage(t, b)

	if n := s.ClientCount(); n != 2 {
		t.Fatalf("ClientCount() = %d, want 2", n)
	}

	if err := a.WriteJSON(Message{Type: TypeSet, ID: param.CutoffID, Value: value(800)}); err != nil {
		t.Fatal(err)
	}

	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		msg := readMessage(t, conn)
		if msg.Type != TypeState || msg.Params[param.CutoffID] != 800 {
			t.Fatalf("client %s got %+v, want state with cutoff 800", name, msg)
		}
	}

	if v, _ := store.Get(param.CutoffID); v != 800 {
		t.Fatalf("store cutoff = %v, want 800", v)
	}
}

func TestSetNormalizedAndClamp(t *testing.T) {
	_, store, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	tests := []struct {
		msg  Message
		id   string
		want float64
	}{
		{Message{Type: TypeSetNormalized, ID: param.ResonanceID, Value: value(0.5)}, param.ResonanceID, 5.5},
		{Message{Type: TypeSet, ID: param.CutoffID, Value: value(1e9)}, param.CutoffID, 20000},
		{Message{Type: TypeReset, ID: param.CutoffID}, param.CutoffID, 440},
		{Message{Type: TypeReset}, param.ResonanceID, 1},
	}

	for _, tt := range tests {
		if err := conn.WriteJSON(tt.msg); err != nil {
			t.Fatal(err)
		}

		msg := readMessage(t, conn)
		if msg.Type != TypeState {
			t.Fatalf("%+v: reply %+v, want state", tt.msg, msg)
		}

		if got := msg.Params[tt.id]; got != tt.want {
			t.Fatalf("%+v: %s = %v, want %v", tt.msg, tt.id, got, tt.want)
		}

		if got, _ := store.Get(tt.id); got != tt.want {
			t.Fatalf("%+v: store %s = %v, want %v", tt.msg, tt.id, got, tt.want)
		}
	}
}

func TestErrorsOnlyReachSender(t *testing.T) {
	_, store, ts := newTestServer(t)

	a := dial(t, ts)
	b := dial(t, ts)

	readMessage(t, a)
	readMessage(t, b)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"unknown id", `{"type":"set","id":"gain","value":1}`, "unknown parameter"},
		{"missing value", `{"type":"set","id":"cutoff"}`, "missing value"},
		{"unknown type", `{"type":"explode"}`, "unknown type"},
		{"bad json", `{"type":`, "invalid message"},
	}

	for _, tt := range tests {
		if err := a.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
			t.Fatal(err)
		}

		msg := readMessage(t, a)
		if msg.Type != TypeError || !strings.Contains(msg.Error, tt.want) {
			t.Fatalf("%s: reply %+v, want error containing %q", tt.name, msg, tt.want)
		}
	}

	// b must not have seen any of the errors; its next message is the
	// reply to its own get.
	if err := b.WriteJSON(Message{Type: TypeGet}); err != nil {
		t.Fatal(err)
	}

	if msg := readMessage(t, b); msg.Type != TypeState {
		t.Fatalf("client b got %+v, want state", msg)
	}

	if v, _ := store.Get(param.CutoffID); v != 440 {
		t.Fatalf("cutoff = %v after rejected requests, want 440", v)
	}
}

func TestBroadcastFromOutside(t *testing.T) {
	s, store, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	_ = store.Set(param.ResonanceID, 7)
	s.Broadcast()

	msg := readMessage(t, conn)
	if msg.Params[param.ResonanceID] != 7 {
		t.Fatalf("broadcast params = %v, want resonance 7", msg.Params)
	}
}

func TestStateEndpoint(t *testing.T) {
	_, store, ts := newTestServer(t)
	_ = store.Set(param.CutoffID, 2000)

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var msg Message
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatal(err)
	}

	if msg.Type != TypeState || msg.Params[param.CutoffID] != 2000 {
		t.Fatalf("state = %+v", msg)
	}

	post, err := http.Post(ts.URL+"/state", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()

	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d, want 405", post.StatusCode)
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	s, _, ts := newTestServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	s.Close()

	if n := s.ClientCount(); n != 0 {
		t.Fatalf("ClientCount() = %d after Close, want 0", n)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected read error after server Close")
	}
}
