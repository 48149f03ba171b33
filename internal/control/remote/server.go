package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cwbudde/algo-iirfilter/dsp/param"
)

const (
	readLimit    = 64 * 1024
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var (
	errInvalidMessage = errors.New("remote: invalid message")
	errMissingValue   = errors.New("remote: missing value")
)

// Option mutates server configuration.
type Option func(*config) error

type config struct {
	logger      *log.Logger
	checkOrigin func(*http.Request) bool
	sendBuffer  int
}

// WithLogger sets the connection logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return fmt.Errorf("remote: nil logger")
		}

		cfg.logger = l

		return nil
	}
}

// WithCheckOrigin overrides the websocket origin check. The default accepts
// every origin.
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(cfg *config) error {
		cfg.checkOrigin = fn
		return nil
	}
}

// WithSendBuffer sets the per-client outgoing queue length.
func WithSendBuffer(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("remote: send buffer must be >= 1: %d", n)
		}

		cfg.sendBuffer = n

		return nil
	}
}

// Server is the websocket control surface of a parameter store.
type Server struct {
	store    *param.Store
	logger   *log.Logger
	upgrader websocket.Upgrader
	sendBuf  int

	nextID  atomic.Int64
	mu      sync.RWMutex
	clients map[int64]*client
}

// New returns a server writing to store.
func New(store *param.Store, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("remote: nil parameter store")
	}

	cfg := config{
		logger:      log.New(io.Discard, "", 0),
		checkOrigin: func(*http.Request) bool { return true },
		sendBuffer:  64,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Server{
		store:  store,
		logger: cfg.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.checkOrigin,
		},
		sendBuf: cfg.sendBuffer,
		clients: make(map[int64]*client),
	}, nil
}

// Handler returns a mux serving /ws and /state.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.HandleFunc("/state", s.handleState)

	return mux
}

// ServeHTTP upgrades the request and serves one client until it leaves.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade: %v", err)
		return
	}

	c := &client{
		id:     s.nextID.Add(1),
		conn:   conn,
		server: s,
		sendCh: make(chan Message, s.sendBuf),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	s.logger.Printf("client %d connected from %s", c.id, r.RemoteAddr)

	c.send(stateMessage(s.store.Snapshot()))

	go c.writePump()

	c.readPump()
}

// Broadcast sends the current state to every client. Controllers that
// change the store outside this server call it to keep clients in sync.
func (s *Server) Broadcast() {
	msg := stateMessage(s.store.Snapshot())

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		c.send(msg)
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients)
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))

	for id, c := range s.clients {
		clients = append(clients, c)
		delete(s.clients, id)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(stateMessage(s.store.Snapshot())); err != nil {
		s.logger.Printf("state: %v", err)
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()

	if ok {
		s.logger.Printf("client %d disconnected", c.id)
	}
}

// apply executes one client request. A nil reply with a nil error means
// the change was accepted and must be broadcast.
func (s *Server) apply(msg Message) (*Message, error) {
	switch msg.Type {
	case TypeGet:
		reply := stateMessage(s.store.Snapshot())
		return &reply, nil
	case TypeSet, TypeSetNormalized:
		if msg.Value == nil {
			return nil, fmt.Errorf("%w: %q", errMissingValue, msg.ID)
		}

		if msg.Type == TypeSet {
			return nil, s.store.Set(msg.ID, *msg.Value)
		}

		return nil, s.store.SetNormalized(msg.ID, *msg.Value)
	case TypeReset:
		if msg.ID == "" {
			s.store.ResetAll()
			return nil, nil
		}

		return nil, s.store.Reset(msg.ID)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errInvalidMessage, msg.Type)
	}
}

type client struct {
	id     int64
	conn   *websocket.Conn
	server *Server
	sendCh chan Message
	done   chan struct{}
	once   sync.Once
}

// send queues msg, dropping it when the client is too slow.
func (c *client) send(msg Message) {
	select {
	case <-c.done:
	case c.sendCh <- msg:
	default:
		c.server.logger.Printf("client %d: send queue full, dropping %s", c.id, msg.Type)
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.close()
	}()

	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Printf("client %d: read: %v", c.id, err)
			}

			return
		}

		c.handle(data)
	}
}

func (c *client) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.send(errorMessage(fmt.Errorf("%w: %v", errInvalidMessage, err)))
		return
	}

	reply, err := c.server.apply(msg)

	switch {
	case err != nil:
		c.send(errorMessage(err))
	case reply != nil:
		c.send(*reply)
	default:
		c.server.Broadcast()
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.sendCh:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteJSON(msg); err != nil {
				c.server.logger.Printf("client %d: write: %v", c.id, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
