package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRegister(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"type":"register_player_to_room","playerId":"p1","roomId":"room-1"}`},
		{name: "missing playerId", body: `{"type":"register_player_to_room","roomId":"room-1"}`, wantErr: true},
		{name: "missing roomId", body: `{"type":"register_player_to_room","playerId":"p1"}`, wantErr: true},
		{name: "not json", body: `register me please`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeRegister([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p1", cmd.PlayerID)
			assert.Equal(t, "room-1", cmd.RoomID)
		})
	}
}

func TestDecodeGameMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid",
			body: `{"type":"game_message","roomId":"room-1","senderPlayerId":"p1","targetPlayerId":"player-2","payload":{"type":"card_play"}}`,
		},
		{name: "missing roomId", body: `{"type":"game_message","senderPlayerId":"p1","targetPlayerId":"player-2","payload":{}}`, wantErr: true},
		{name: "missing sender", body: `{"type":"game_message","roomId":"room-1","targetPlayerId":"player-2","payload":{}}`, wantErr: true},
		{name: "missing target", body: `{"type":"game_message","roomId":"room-1","senderPlayerId":"p1","payload":{}}`, wantErr: true},
		{name: "missing payload", body: `{"type":"game_message","roomId":"room-1","senderPlayerId":"p1","targetPlayerId":"player-2"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeGameMessage([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "player-2", cmd.TargetPlayerID)
			assert.NotEmpty(t, cmd.Payload)
		})
	}
}

func TestDecodeCardPlay(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"type":"card_play","card":{"id":25,"name":"pikachu"},"timestamp":"2024-01-01T00:00:00Z"}`},
		{name: "no timestamp", body: `{"type":"card_play","card":{"id":25,"name":"pikachu"}}`},
		{name: "wrong type", body: `{"type":"enter_room","card":{"id":25}}`, wantErr: true},
		{name: "missing card", body: `{"type":"card_play"}`, wantErr: true},
		{name: "not json", body: `pikachu i choose you`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			play, err := DecodeCardPlay([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, play.Card)
			assert.Equal(t, 25, play.Card.ID)
			assert.Equal(t, "pikachu", play.Card.Name)
		})
	}
}
