package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// BridgeFunc receives every successfully parsed card play from a session
// connection, together with the sender's identity and room.
type BridgeFunc func(senderPlayerID, roomID string, play CardPlay)

// SessionServer accepts player connections, assigns identities, and routes
// every player into the configured room, enforcing its capacity.
type SessionServer struct {
	registry *Registry
	roomID   string
	counter  atomic.Uint64
	upgrader websocket.Upgrader

	bridgeLock sync.Mutex
	bridge     BridgeFunc
}

func NewSessionServer(registry *Registry, roomID string) *SessionServer {
	return &SessionServer{
		registry: registry,
		roomID:   roomID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// OnCardPlayed registers the bridge. The slot holds a single function;
// registering again replaces the previous one.
func (s *SessionServer) OnCardPlayed(fn BridgeFunc) {
	s.bridgeLock.Lock()
	defer s.bridgeLock.Unlock()
	s.bridge = fn
}

func (s *SessionServer) bridgeFunc() BridgeFunc {
	s.bridgeLock.Lock()
	defer s.bridgeLock.Unlock()
	return s.bridge
}

// SocketHandler upgrades the connection and runs the player session until the
// peer disconnects. Identities come from a process-lifetime counter and are
// never reused, even after disconnect.
func (s *SessionServer) SocketHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade session connection: ", err)
		return
	}

	defer conn.Close()

	playerID := fmt.Sprintf("player-%d", s.counter.Add(1))
	roomID := s.roomID
	client := newWSConn(conn)

	logFields := log.Fields{
		"player": playerID,
		"room":   roomID,
	}

	if err := s.registry.Join(roomID, playerID, client); err != nil {
		log.WithFields(logFields).Warn("Rejecting player: ", err)
		rejection, _ := json.Marshal(WireError{
			Type:    MessageTypeError,
			Message: fmt.Sprintf("Room %s is full. Try again later.", roomID),
			Code:    CodeRoomFull,
			RoomID:  roomID,
		})
		conn.WriteMessage(websocket.TextMessage, rejection)
		return
	}

	SessionsGauge.Inc()
	log.WithFields(logFields).Info("Player connected")

	defer func() {
		s.registry.Leave(roomID, playerID)
		SessionsGauge.Dec()
		log.WithFields(logFields).Info("Player disconnected")

		departure := fmt.Sprintf("[Room %s] Player %s has disconnected.", roomID, playerID)
		for _, err := range s.registry.Broadcast(roomID, []byte(departure)) {
			log.WithFields(logFields).Warn("Failed to deliver departure notice: ", err)
		}
	}()

	welcome := fmt.Sprintf("Welcome, Player %s! You are in Room %s.", playerID, roomID)
	if err := client.Send([]byte(welcome)); err != nil {
		log.WithFields(logFields).Warn("Failed to queue welcome message: ", err)
	}

	room := s.registry.Snapshot()[roomID]
	joined := fmt.Sprintf("[Room %s] Player %s has joined. (%d/%d)",
		roomID, playerID, room.CurrentPlayerCount, room.MaxPlayers)
	for _, err := range s.registry.Broadcast(roomID, []byte(joined)) {
		log.WithFields(logFields).Warn("Failed to deliver join notice: ", err)
	}

	go s.read(client, playerID, roomID)

	client.write()
}

func (s *SessionServer) read(c *wsConn, playerID, roomID string) {
	defer c.close()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				log.WithFields(log.Fields{
					"player": playerID,
					"room":   roomID,
				}).Debug("Session read ended: ", err)
			}
			return
		}

		s.handleMessage(c, playerID, roomID, message)
	}
}

// handleMessage parses one inbound gameplay message. A parse failure is
// answered to the sender only and the connection stays open; a parsed play is
// handed to the bridge, or silently dropped when none is registered.
func (s *SessionServer) handleMessage(c *wsConn, playerID, roomID string, message []byte) {
	play, err := DecodeCardPlay(message)
	if err != nil {
		log.WithFields(log.Fields{
			"player": playerID,
			"room":   roomID,
		}).Warn("Malformed gameplay message: ", err)

		if sendErr := c.Send(encodeError("Invalid gameplay message format.", CodeMalformedMessage)); sendErr != nil {
			log.Warn("Failed to deliver parse error: ", sendErr)
		}
		return
	}

	CardPlaysCounter.Inc()

	fn := s.bridgeFunc()
	if fn == nil {
		log.WithFields(log.Fields{
			"player": playerID,
			"room":   roomID,
		}).Debug("No bridge registered, dropping card play")
		return
	}

	fn(playerID, roomID, *play)
}
