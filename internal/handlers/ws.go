// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/trolleyparty/trolley/internal/game"
	"github.com/trolleyparty/trolley/internal/middleware"
)

// wsMessage is the envelope for every inbound client message.
type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// joinPayload carries the joinGame action's fields. isHost re-attaches the
// host display to an existing room without creating a Player.
type joinPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
}

// choicePayload carries the hotSeatChoice, guess and vote actions.
type choicePayload struct {
	Choice game.Choice `json:"choice"`
}

// WSHandler upgrades the HTTP connection to a websocket and runs the read
// loop. Each connection gets a fresh UUID: that UUID is the player identity
// for as long as the socket lives.
func WSHandler(logger *logrus.Logger, s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"trolley"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "trolley" {
			c.Close(BadSubprotocolError, "client must speak the trolley subprotocol")
			return
		}

		connID := uuid.New()
		cl := &client{id: connID, out: make(chan []byte, 16)}
		s.addClient(cl)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, connID.String())

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, c, cl, logger)

		readErr := readMessages(ctx, c, s, connID, logger)

		// Cleanup: drop the player from its room (the roster shrink can
		// itself complete a hot-seat round) and forget the connection.
		s.Registry.Disconnect(connID)
		s.removeClient(connID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, connID.String(), readErr)
	}
}

// writePump drains a client's outbound queue onto the socket.
func writePump(ctx context.Context, c *websocket.Conn, cl *client, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-cl.out:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write to client %s: %v", cl.id, err)
				return
			}
		}
	}
}

// readMessages reads and routes envelopes until the connection closes.
func readMessages(ctx context.Context, c *websocket.Conn, s *Server, connID uuid.UUID, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON from %s: %v", connID, err)
			s.sendError(connID, "invalid JSON")
			continue
		}
		logger.Debugf("Action %q from %s", msg.Type, connID)
		s.route(connID, msg)
	}
}

// route dispatches one inbound action. Room-creation and join go through the
// registry; everything else resolves the sender's room first. Actions from a
// connection that is in no room are dropped.
func (s *Server) route(connID uuid.UUID, msg wsMessage) {
	switch msg.Type {
	case "createRoom":
		s.handleCreateRoom(connID)
		return
	case "joinGame":
		s.handleJoin(connID, msg.Payload)
		return
	}

	room, ok := s.Registry.RoomFor(connID)
	if !ok {
		s.Logger.Debugf("Action %q from %s outside any room, ignoring", msg.Type, connID)
		return
	}

	switch msg.Type {
	case "updateSettings":
		var patch game.SettingsPatch
		if err := json.Unmarshal(msg.Payload, &patch); err != nil {
			s.sendError(connID, "invalid settings payload")
			return
		}
		room.UpdateSettings(patch)
	case "startGame":
		room.StartGame()
	case "hotSeatChoice", "guess", "vote":
		var p choicePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(connID, "invalid choice payload")
			return
		}
		room.SubmitAction(connID, msg.Type, p.Choice)
	case "forceEndHotSeat":
		room.ForceEndHotSeat()
	case "endRound":
		room.EndStandardRound()
	case "nextRound":
		room.NextRound()
	case "resetGame":
		room.Reset()
	default:
		s.Logger.Warnf("Unknown action %q from %s", msg.Type, connID)
	}
}

// handleCreateRoom allocates a room for a host display and replies with the
// code, the initial snapshot and the join QR.
func (s *Server) handleCreateRoom(connID uuid.UUID) {
	room, err := s.Registry.CreateRoom()
	if err != nil {
		if errors.Is(err, game.ErrRoomCapacity) {
			s.sendError(connID, "server is full, try again later")
			return
		}
		s.sendError(connID, "could not create room")
		return
	}
	s.installBroadcast(room)
	s.Registry.Subscribe(room.Code, connID)

	s.sendEvent(connID, game.Event{
		Type:    game.EventGameCreated,
		State:   room.Snapshot(),
		Payload: map[string]interface{}{"roomCode": room.Code},
	})
	s.sendJoinQR(connID, room.Code)
}

// handleJoin attaches a connection to an existing room. Unknown codes are a
// non-fatal error back to the client; a host re-attach gets the QR again.
func (s *Server) handleJoin(connID uuid.UUID, payload json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError(connID, "invalid join payload")
		return
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Guest"
	}

	room, err := s.Registry.Join(p.RoomCode, connID, name, p.IsHost)
	if err != nil {
		s.sendError(connID, "Room not found")
		return
	}
	if p.IsHost {
		s.sendJoinQR(connID, room.Code)
		// Joining broadcasts nothing for hosts; sync this screen directly.
		s.sendEvent(connID, game.Event{Type: game.EventUpdateState, State: room.Snapshot()})
	}
}
