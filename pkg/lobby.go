package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// lobbyClient is one game-client connection and its optional binding. The
// binding fields are guarded by the LobbyServer lock, not the connection's.
type lobbyClient struct {
	id   uuid.UUID
	conn *wsConn

	playerID string
	roomID   string
}

func (c *lobbyClient) bound() bool {
	return c.playerID != ""
}

// LobbyServer accepts game-client connections and owns the binding table. A
// connection must register an identity/room binding before it may relay, and
// relay commands are validated against that binding before they reach the
// registry.
type LobbyServer struct {
	registry *Registry
	upgrader websocket.Upgrader

	lock    sync.RWMutex
	clients map[uuid.UUID]*lobbyClient
}

func NewLobbyServer(registry *Registry) *LobbyServer {
	return &LobbyServer{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uuid.UUID]*lobbyClient),
	}
}

// SocketHandler upgrades the connection and serves lobby commands until the
// peer disconnects. Closing removes the connection and its binding; registry
// state is untouched, lobby connections are never room members.
func (s *LobbyServer) SocketHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade lobby connection: ", err)
		return
	}

	defer conn.Close()

	client := &lobbyClient{
		id:   uuid.New(),
		conn: newWSConn(conn),
	}

	s.lock.Lock()
	s.clients[client.id] = client
	s.lock.Unlock()

	LobbyClientsGauge.Inc()
	log.WithFields(log.Fields{"client": client.id}).Info("Lobby client connected")

	defer func() {
		s.lock.Lock()
		delete(s.clients, client.id)
		s.lock.Unlock()

		LobbyClientsGauge.Dec()
		log.WithFields(log.Fields{"client": client.id}).Info("Lobby client disconnected")
	}()

	go s.read(client)

	client.conn.write()
}

func (s *LobbyServer) read(c *lobbyClient) {
	defer c.conn.close()

	for {
		_, message, err := c.conn.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				log.WithFields(log.Fields{"client": c.id}).Debug("Lobby read ended: ", err)
			}
			return
		}

		s.handleMessage(c, message)
	}
}

// handleMessage dispatches one inbound command. Every failure is answered to
// the sending connection only; the connection stays open regardless.
func (s *LobbyServer) handleMessage(c *lobbyClient, message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		log.WithFields(log.Fields{"client": c.id}).Warn("Malformed lobby message: ", err)
		s.reply(c, encodeError("Failed to parse message.", CodeMalformedMessage))
		return
	}

	switch env.Type {
	case MessageTypeRegister:
		s.handleRegister(c, message)
	case MessageTypeRoomsInfo:
		s.handleRoomsInfo(c)
	case MessageTypeGameMessage:
		s.handleGameMessage(c, message)
	default:
		log.WithFields(log.Fields{
			"client": c.id,
			"type":   env.Type,
		}).Warn("Unknown lobby message type")
		s.reply(c, encodeError("Unknown message type.", CodeUnknownMessageType))
	}
}

// handleRegister sets the connection's binding. Re-registering on the same
// connection replaces the binding; claiming an identity already bound by a
// different live connection is rejected.
func (s *LobbyServer) handleRegister(c *lobbyClient, message []byte) {
	cmd, err := DecodeRegister(message)
	if err != nil {
		s.reply(c, encodeError("Invalid registration message.", CodeMalformedMessage))
		return
	}

	s.lock.Lock()
	for _, other := range s.clients {
		if other.id != c.id && other.playerID == cmd.PlayerID {
			s.lock.Unlock()
			log.WithFields(log.Fields{
				"client": c.id,
				"player": cmd.PlayerID,
			}).Warn("Registration conflict: ", ErrBindingConflict)
			s.reply(c, encodeError(
				fmt.Sprintf("Player %s is already registered on another connection.", cmd.PlayerID),
				CodeBindingConflict))
			return
		}
	}
	c.playerID = cmd.PlayerID
	c.roomID = cmd.RoomID
	s.lock.Unlock()

	log.WithFields(log.Fields{
		"client": c.id,
		"player": cmd.PlayerID,
		"room":   cmd.RoomID,
	}).Info("Lobby client registered")

	ack, _ := json.Marshal(RegistrationSuccess{
		Type:     MessageTypeRegistrationSuccess,
		PlayerID: cmd.PlayerID,
		RoomID:   cmd.RoomID,
	})
	s.reply(c, ack)
}

// handleRoomsInfo requires no binding and returns the registry snapshot verbatim.
func (s *LobbyServer) handleRoomsInfo(c *lobbyClient) {
	response, _ := json.Marshal(RoomsInfoResponse{
		Type:  MessageTypeRoomsInfoResponse,
		Rooms: s.registry.Snapshot(),
	})
	s.reply(c, response)
}

// handleGameMessage validates the claimed sender against the connection's
// binding, then relays the payload through the registry. Registry failures are
// reported to the caller only as a generic not-found-or-disconnected error.
func (s *LobbyServer) handleGameMessage(c *lobbyClient, message []byte) {
	cmd, err := DecodeGameMessage(message)
	if err != nil {
		s.reply(c, encodeError("Invalid game message.", CodeMalformedMessage))
		return
	}

	s.lock.RLock()
	authorized := c.bound() && c.playerID == cmd.SenderPlayerID && c.roomID == cmd.RoomID
	s.lock.RUnlock()

	if !authorized {
		log.WithFields(log.Fields{
			"client": c.id,
			"sender": cmd.SenderPlayerID,
			"room":   cmd.RoomID,
		}).Warn("Game message sender does not match registration")
		s.reply(c, encodeError("Authentication/registration error.", CodeAuthMismatch))
		return
	}

	if err := s.registry.SendToPlayer(cmd.RoomID, cmd.TargetPlayerID, cmd.Payload); err != nil {
		log.WithFields(log.Fields{
			"client": c.id,
			"target": cmd.TargetPlayerID,
			"room":   cmd.RoomID,
		}).Warn("Failed to relay game message: ", err)

		failure, _ := json.Marshal(WireError{
			Type: MessageTypeError,
			Message: fmt.Sprintf(
				"Could not deliver message to player %s. They may be disconnected or not in the room.",
				cmd.TargetPlayerID),
			Code:           CodeTargetUnreachable,
			TargetPlayerID: cmd.TargetPlayerID,
			RoomID:         cmd.RoomID,
		})
		s.reply(c, failure)
		return
	}

	RelayedMessagesCounter.Inc()

	status, _ := json.Marshal(GameMessageStatus{
		Type:   MessageTypeGameMessageStatus,
		Status: "success",
		Message: fmt.Sprintf("Game message delivered to player %s in room %s.",
			cmd.TargetPlayerID, cmd.RoomID),
		TargetPlayerID: cmd.TargetPlayerID,
	})
	s.reply(c, status)
}

// BroadcastCardPlayed is the bridge target registered on the session listener.
// It pushes the play to every lobby connection bound to the same room under a
// different identity; closed or backlogged connections are logged and skipped.
func (s *LobbyServer) BroadcastCardPlayed(senderPlayerID, roomID string, play CardPlay) {
	notification, _ := json.Marshal(OpponentPlayedCard{
		Type:           MessageTypeOpponentPlayedCard,
		SenderPlayerID: senderPlayerID,
		Card:           play.Card,
		RoomID:         roomID,
		Message: fmt.Sprintf("The other player (%s) has played: %s",
			senderPlayerID, play.Card.Name),
	})

	s.lock.RLock()
	targets := make([]*lobbyClient, 0, len(s.clients))
	for _, client := range s.clients {
		if client.bound() && client.roomID == roomID && client.playerID != senderPlayerID {
			targets = append(targets, client)
		}
	}
	s.lock.RUnlock()

	BridgedPlaysCounter.Inc()

	for _, client := range targets {
		if !client.conn.open() {
			continue
		}
		if err := client.conn.Send(notification); err != nil {
			DroppedDeliveriesCounter.Inc()
			log.WithFields(log.Fields{
				"client": client.id,
				"room":   roomID,
			}).Warn("Failed to push card play notification: ", err)
		}
	}
}

func (s *LobbyServer) reply(c *lobbyClient, data []byte) {
	if err := c.conn.Send(data); err != nil {
		log.WithFields(log.Fields{"client": c.id}).Warn("Failed to deliver reply: ", err)
	}
}
