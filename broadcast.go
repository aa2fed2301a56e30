package roomcast

// BroadcastOperator accumulates the addressing of a broadcast. Each
// modifier returns a new operator, so a partially built one can be
// reused and chained safely.
type BroadcastOperator struct {
	dispatcher *Dispatcher

	rooms  []string
	except []string
	merge  []string
	flags  Flags
}

func newBroadcastOperator(d *Dispatcher) *BroadcastOperator {
	return &BroadcastOperator{dispatcher: d}
}

// To restricts the broadcast to sockets in any of rooms.
func (b *BroadcastOperator) To(rooms ...string) *BroadcastOperator {
	clone := *b
	clone.rooms = appendCopy(b.rooms, rooms...)
	return &clone
}

// In is an alias of To.
func (b *BroadcastOperator) In(rooms ...string) *BroadcastOperator {
	return b.To(rooms...)
}

// Except drops sockets found in any of rooms. A socket's own-id room
// makes excluding a single socket an Except(sid) call.
func (b *BroadcastOperator) Except(rooms ...string) *BroadcastOperator {
	clone := *b
	clone.except = appendCopy(b.except, rooms...)
	return &clone
}

// InAll additionally requires candidates to be members of every one of
// rooms. A room that does not exist leaves no candidate standing.
func (b *BroadcastOperator) InAll(rooms ...string) *BroadcastOperator {
	clone := *b
	clone.merge = appendCopy(b.merge, rooms...)
	return &clone
}

// Volatile marks delivery as best-effort.
func (b *BroadcastOperator) Volatile() *BroadcastOperator {
	clone := *b
	clone.flags.Volatile = true
	return &clone
}

// Compress sets the transport compression hint.
func (b *BroadcastOperator) Compress(compress bool) *BroadcastOperator {
	clone := *b
	clone.flags.Compress = compress
	return &clone
}

// Local marks the broadcast as local-only, an opaque hint for the
// transport.
func (b *BroadcastOperator) Local() *BroadcastOperator {
	clone := *b
	clone.flags.Local = true
	return &clone
}

// Emit broadcasts an event packet to the addressed sockets.
func (b *BroadcastOperator) Emit(event string, args ...any) error {
	return b.dispatcher.Broadcast(EventPacket(DefaultNamespace, event, args...), b.opts())
}

// EmitRaw broadcasts an already encoded payload as-is.
func (b *BroadcastOperator) EmitRaw(payload []byte) error {
	opts := b.opts()
	opts.Flags.PreEncoded = true
	packet := &Packet{
		Type:      PacketEvent,
		Namespace: DefaultNamespace,
		Data:      payload,
	}
	return b.dispatcher.Broadcast(packet, opts)
}

// FetchSockets returns the live sockets the operator addresses.
func (b *BroadcastOperator) FetchSockets() []Socket {
	return b.dispatcher.FetchSockets(b.opts())
}

// SocketsJoin makes every addressed socket join rooms.
func (b *BroadcastOperator) SocketsJoin(rooms ...string) {
	b.dispatcher.SocketsJoin(b.opts(), rooms...)
}

// SocketsLeave makes every addressed socket leave rooms.
func (b *BroadcastOperator) SocketsLeave(rooms ...string) {
	b.dispatcher.SocketsLeave(b.opts(), rooms...)
}

// DisconnectSockets disconnects every addressed socket.
func (b *BroadcastOperator) DisconnectSockets(closeConn bool) {
	b.dispatcher.DisconnectSockets(b.opts(), closeConn)
}

func (b *BroadcastOperator) opts() *BroadcastOptions {
	return &BroadcastOptions{
		Rooms:  b.rooms,
		Except: b.except,
		Merge:  b.merge,
		Flags:  b.flags,
	}
}

func appendCopy(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}
