package roomcast

// Socket is one deliverable connected endpoint. Implementations live on
// the transport side; the core only addresses them.
type Socket interface {
	ID() string

	// Send delivers an encoded payload. Fire-and-forget from the core's
	// perspective; errors are the transport's business.
	Send(payload []byte, flags Flags) error

	// Join adds the socket to rooms.
	Join(rooms ...string)

	// Leave removes the socket from room.
	Leave(room string)

	// Disconnect tears the socket down. When closeConn is true the
	// underlying connection is closed as well.
	Disconnect(closeConn bool)
}

// SocketLookup resolves a socket id to a live connection.
type SocketLookup interface {
	FindSocket(sid string) (Socket, bool)
}

// Flags are per-delivery hints handed through to the transport. Local and
// Broadcast carry no meaning inside the core.
type Flags struct {
	// Volatile marks delivery as best-effort; the transport may drop the
	// payload rather than block.
	Volatile bool

	// Compress hints that the transport should compress the payload.
	Compress bool

	// PreEncoded marks the packet data as already transport-ready,
	// bypassing the encoder.
	PreEncoded bool

	Local     bool
	Broadcast bool
}
