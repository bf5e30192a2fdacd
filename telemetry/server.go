// Package telemetry serves crane state over http and websocket
package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

type Server struct {
	lock    sync.Mutex
	last    []byte
	clients map[*client]bool
	closed  bool

	upgrader websocket.Upgrader
	router   *mux.Router
	srv      *http.Server
}

func NewServer() *Server {
	s := &Server{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/state", s.HandlerState).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.HandlerWebsocket)
	s.router = r
	return s
}

// Handler returns routes wrapped with logging and panic recovery
func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.router)
	return handlers.LoggingHandler(os.Stdout, h)
}

// Start listens on addr and serves in background
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Failed to listen %q", addr)
	}
	s.srv = &http.Server{Handler: s.Handler()}

	log.Printf("[telemetry] Starting server %v", ln.Addr())
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[telemetry] Server stopped: %v", err)
		}
	}()
	return nil
}

// Shutdown stops server and disconnects websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.lock.Lock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.lock.Unlock()

	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Publish encodes v right away, so caller is free to modify it after.
// Slow websocket clients skip messages instead of blocking caller.
func (s *Server) Publish(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal state")
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.last = data
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
	return nil
}

func (s *Server) Last() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.last
}

func (s *Server) NumClients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

func (s *Server) HandlerState(w http.ResponseWriter, r *http.Request) {
	data := s.Last()
	if data == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no state published yet"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) HandlerWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[telemetry] ws upgrade error: %v", err)
		return
	}
	if !s.register(newClient(s, conn)) {
		conn.Close()
	}
}

func (s *Server) register(c *client) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = true
	if s.last != nil {
		c.send <- s.last
	}
	go c.writePump()
	go c.readPump()
	return true
}

func (s *Server) unregister(c *client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
