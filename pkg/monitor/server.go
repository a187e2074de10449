package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to live clients.
type Message struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Server exposes a run to live dashboards. Events go out as SSE
// on /events and as WebSocket text frames on /ws.
type Server struct {
	mu        sync.RWMutex
	collector *EventCollector
	dashboard *DashboardData
	clients   map[chan []byte]struct{}
	router    chi.Router
	upgrader  websocket.Upgrader
	addr      string
	server    *http.Server
	listener  net.Listener
}

// NewServer creates a monitor server fed by collector.
func NewServer(addr string, collector *EventCollector, dashboard *DashboardData) *Server {
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: dashboard,
		clients:   make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/stats", s.handleStats)
	r.Get("/events", s.handleSSE)
	r.Get("/ws", s.handleWebSocket)
	s.router = r

	collector.OnEvent(func(event CaseEvent) {
		dashboard.UpdateFromEvent(event)
		data, err := json.Marshal(Message{Kind: "event", Data: event})
		if err != nil {
			return
		}
		s.broadcast(data)
	})
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves until ctx is done or
// Stop is called. It returns once the listener is bound; serve
// errors are delivered on the returned channel.
func (s *Server) Start(ctx context.Context) (<-chan error, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("monitor server: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("monitor server: %w", err)
		}
		close(errCh)
	}()
	return errCh, nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.dashboard.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.collector.Stats())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) subscribe() chan []byte {
	ch := make(chan []byte, 32)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

func (s *Server) snapshotMessage() []byte {
	data, _ := json.Marshal(Message{Kind: "dashboard", Data: s.dashboard.Snapshot()})
	return data
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", s.snapshotMessage())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-ch:
			fmt.Fprintf(w, "event: case\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, s.snapshotMessage()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case data := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			// slow client
		}
	}
}

// ClientCount returns the number of connected live clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
