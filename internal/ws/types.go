package ws

const (
	// client - server
	MsgClick = "click"
	MsgPing  = "ping"

	// server - client
	MsgState = "state"
	MsgPong  = "pong"
	MsgError = "error"
)
