// Package protocol is the envelope codec spoken on the game websocket.
package protocol

import (
	"encoding/json"
)

// Server to client.
const (
	MsgState = "state"
	MsgError = "error"
)

// Client to server.
const (
	MsgAdd     = "add"
	MsgRemove  = "remove"
	MsgEndgame = "endgame"
	MsgUndo    = "undo"
	MsgReset   = "reset"
	MsgMode    = "mode"
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}
