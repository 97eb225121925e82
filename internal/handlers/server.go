// internal/handlers/server.go
package handlers

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trolleyparty/trolley/internal/game"
)

// Server is the transport layer: it tracks live websocket connections and
// bridges the room registry's broadcast contract onto them.
type Server struct {
	Registry *game.Registry
	Logger   *logrus.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

// client is one websocket connection's outbound side. Messages are queued on
// out and drained by a write pump; the game logic never blocks on a socket.
type client struct {
	id  uuid.UUID
	out chan []byte
}

// NewServer builds a Server around a registry.
func NewServer(reg *game.Registry, logger *logrus.Logger) *Server {
	return &Server{
		Registry: reg,
		Logger:   logger,
		clients:  make(map[uuid.UUID]*client),
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.id] = c
}

func (s *Server) removeClient(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// send queues marshaled bytes for one connection. A client that cannot keep
// up has its message dropped rather than stalling the room.
func (s *Server) send(connID uuid.UUID, data []byte) {
	s.mu.Lock()
	c, ok := s.clients[connID]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.out <- data:
	default:
		s.Logger.Warnf("Dropping message for slow client %s", connID)
	}
}

// sendEvent marshals and queues a single event for one connection.
func (s *Server) sendEvent(connID uuid.UUID, ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.Logger.Errorf("Failed to marshal event %s for %s: %v", ev.Type, connID, err)
		return
	}
	s.send(connID, data)
}

// sendError queues an error event for one connection. The connection stays
// open; bad input never costs a player their session.
func (s *Server) sendError(connID uuid.UUID, msg string) {
	s.sendEvent(connID, game.Event{
		Type:    game.EventError,
		Payload: map[string]interface{}{"message": msg},
	})
}

// installBroadcast wires a room's publish hook to every connection the
// registry has subscribed to it. The room lock is held while BroadcastFn
// runs, so the event is marshaled once and the socket writes happen on the
// clients' own write pumps.
func (s *Server) installBroadcast(room *game.Room) {
	code := room.Code
	room.BroadcastFn = func(ev game.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			s.Logger.Errorf("Failed to marshal broadcast event %s for room %s: %v", ev.Type, code, err)
			return
		}
		for _, connID := range s.Registry.Members(code) {
			s.send(connID, data)
		}
	}
}
