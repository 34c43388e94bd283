package pkg

import (
	"encoding/json"
	"fmt"
)

// Inbound message tags. The protocol is a closed set: anything else is
// answered with an unknown-message-type error.
const (
	MessageTypeRegister    = "register_player_to_room"
	MessageTypeRoomsInfo   = "request_rooms_info"
	MessageTypeGameMessage = "game_message"
	MessageTypeCardPlay    = "card_play"
)

// Outbound message tags.
const (
	MessageTypeRegistrationSuccess = "registration_success"
	MessageTypeRoomsInfoResponse   = "rooms_info"
	MessageTypeGameMessageStatus   = "game_message_status"
	MessageTypeOpponentPlayedCard  = "opponent_played_card"
	MessageTypeError               = "error"
)

// Machine-readable codes carried on error responses.
const (
	CodeRoomFull           = "ROOM_FULL"
	CodeAuthMismatch       = "AUTH_MISMATCH"
	CodeBindingConflict    = "BINDING_CONFLICT"
	CodeTargetUnreachable  = "PLAYER_NOT_FOUND_OR_DISCONNECTED"
	CodeMalformedMessage   = "MALFORMED_MESSAGE"
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
)

type envelope struct {
	Type string `json:"type"`
}

// RegisterCommand binds the sending lobby connection to a player identity and room.
type RegisterCommand struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}

// GameMessageCommand asks the lobby to relay a payload to a session player.
// The claimed sender identity and room must match the connection's binding.
type GameMessageCommand struct {
	RoomID         string          `json:"roomId"`
	SenderPlayerID string          `json:"senderPlayerId"`
	TargetPlayerID string          `json:"targetPlayerId"`
	Payload        json.RawMessage `json:"payload"`
}

// CardPlay is the single gameplay payload a session connection may send.
type CardPlay struct {
	Card      *Card  `json:"card"`
	Timestamp string `json:"timestamp,omitempty"`
}

// RegistrationSuccess acknowledges a register_player_to_room command.
type RegistrationSuccess struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}

// RoomsInfoResponse carries a registry snapshot.
type RoomsInfoResponse struct {
	Type  string              `json:"type"`
	Rooms map[string]RoomInfo `json:"rooms"`
}

// GameMessageStatus reports the outcome of a relay to the requesting connection.
type GameMessageStatus struct {
	Type           string `json:"type"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	TargetPlayerID string `json:"targetPlayerId"`
}

// OpponentPlayedCard is the unsolicited push emitted by the bridge.
type OpponentPlayedCard struct {
	Type           string `json:"type"`
	SenderPlayerID string `json:"senderPlayerId"`
	Card           *Card  `json:"card"`
	RoomID         string `json:"roomId"`
	Message        string `json:"message"`
}

// WireError is the error response sent to an offending connection. Code and
// the target fields are present only when they add something.
type WireError struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Code           string `json:"code,omitempty"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	RoomID         string `json:"roomId,omitempty"`
}

func encodeError(message, code string) []byte {
	data, _ := json.Marshal(WireError{Type: MessageTypeError, Message: message, Code: code})
	return data
}

// DecodeRegister validates and decodes a register_player_to_room body.
func DecodeRegister(data []byte) (*RegisterCommand, error) {
	var cmd RegisterCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("decode register command: %w", err)
	}
	if cmd.PlayerID == "" {
		return nil, fmt.Errorf("register command: missing playerId")
	}
	if cmd.RoomID == "" {
		return nil, fmt.Errorf("register command: missing roomId")
	}
	return &cmd, nil
}

// DecodeGameMessage validates and decodes a game_message body.
func DecodeGameMessage(data []byte) (*GameMessageCommand, error) {
	var cmd GameMessageCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("decode game message: %w", err)
	}
	if cmd.RoomID == "" {
		return nil, fmt.Errorf("game message: missing roomId")
	}
	if cmd.SenderPlayerID == "" {
		return nil, fmt.Errorf("game message: missing senderPlayerId")
	}
	if cmd.TargetPlayerID == "" {
		return nil, fmt.Errorf("game message: missing targetPlayerId")
	}
	if len(cmd.Payload) == 0 {
		return nil, fmt.Errorf("game message: missing payload")
	}
	return &cmd, nil
}

// DecodeCardPlay validates and decodes a session gameplay message.
func DecodeCardPlay(data []byte) (*CardPlay, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode card play: %w", err)
	}
	if env.Type != MessageTypeCardPlay {
		return nil, fmt.Errorf("decode card play: unexpected type %q", env.Type)
	}

	var play CardPlay
	if err := json.Unmarshal(data, &play); err != nil {
		return nil, fmt.Errorf("decode card play: %w", err)
	}
	if play.Card == nil {
		return nil, fmt.Errorf("card play: missing card")
	}
	return &play, nil
}
