package ws

import "encoding/json"

// Command is the inbound message envelope. Payload shape depends on
// Type.
type Command struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound command types.
const (
	CmdAuthenticate    = "authenticate"
	CmdCreateRoom      = "createRoom"
	CmdJoinRoom        = "joinRoom"
	CmdStartGame       = "startGame"
	CmdPlayCard        = "playCard"
	CmdDrawCards       = "drawCards"
	CmdDeclareLastCard = "declareLastCard"
	CmdAccuseLastCard  = "accuseLastCard"
	CmdChatMessage     = "chatMessage"
)

type authenticatePayload struct {
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
}

type createRoomPayload struct {
	MaxPlayers int  `json:"maxPlayers"`
	UseBots    bool `json:"useBots"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type playCardPayload struct {
	RoomID      string `json:"roomId"`
	CardIndices []int  `json:"cardIndices"`
	ChosenColor string `json:"chosenColor,omitempty"`
}

type chatPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}
