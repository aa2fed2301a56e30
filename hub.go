package roomcast

import (
	"sync"

	"go.uber.org/zap"
)

// Hub ties the pieces together: it owns the adapter, keeps the map of
// live sockets, and is the SocketLookup the resolver consults. Transports
// hand connected sockets to Connect and report closed ones to Disconnect.
type Hub struct {
	adapter    Adapter
	encoder    Encoder
	dispatcher *Dispatcher

	sync.RWMutex
	sockets map[string]Socket

	logger *zap.SugaredLogger
}

type HubOption func(h *Hub)

func WithLogger(logger *zap.SugaredLogger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithEncoder(encoder Encoder) HubOption {
	return func(h *Hub) {
		h.encoder = encoder
	}
}

// WithAdapter swaps the membership backend. The default is an in-memory
// Registry.
func WithAdapter(adapter Adapter) HubOption {
	return func(h *Hub) {
		h.adapter = adapter
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		sockets: make(map[string]Socket),
	}

	for _, o := range opts {
		o(h)
	}

	if h.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		h.logger = logger.Sugar()
	}
	if h.adapter == nil {
		h.adapter = NewRegistry(WithRegistryLogger(h.logger.With("Adapter", "InMemory")))
	}
	if h.encoder == nil {
		h.encoder = JSONEncoder{}
	}

	resolver := NewResolver(h.adapter, h, h.logger.With("Hub", "resolver"))
	h.dispatcher = NewDispatcher(resolver, h.encoder, h.logger.With("Hub", "dispatcher"))

	return h
}

// Connect registers a live socket and joins it to its own-id room, so a
// single socket can be addressed and excluded like any room.
func (h *Hub) Connect(s Socket) {
	sid := s.ID()
	h.logger.Debugf("%s Connect", sid)

	h.Lock()
	h.sockets[sid] = s
	h.Unlock()

	h.adapter.AddSocket(sid)
	h.adapter.Join(sid, sid)
}

// Disconnect forgets the socket and clears its memberships.
func (h *Hub) Disconnect(sid string) {
	h.logger.Debugf("%s Disconnect", sid)

	h.Lock()
	delete(h.sockets, sid)
	h.Unlock()

	h.adapter.RemoveSocket(sid)
}

// FindSocket implements SocketLookup.
func (h *Hub) FindSocket(sid string) (Socket, bool) {
	h.RLock()
	defer h.RUnlock()
	s, ok := h.sockets[sid]
	return s, ok
}

func (h *Hub) Adapter() Adapter {
	return h.adapter
}

func (h *Hub) Dispatcher() *Dispatcher {
	return h.dispatcher
}

// Broadcast addresses every registered socket.
func (h *Hub) Broadcast() *BroadcastOperator {
	return newBroadcastOperator(h.dispatcher)
}

// To addresses sockets in any of rooms.
func (h *Hub) To(rooms ...string) *BroadcastOperator {
	return newBroadcastOperator(h.dispatcher).To(rooms...)
}

// In is an alias of To.
func (h *Hub) In(rooms ...string) *BroadcastOperator {
	return h.To(rooms...)
}

// Except addresses everyone outside the given rooms.
func (h *Hub) Except(rooms ...string) *BroadcastOperator {
	return newBroadcastOperator(h.dispatcher).Except(rooms...)
}

// InAll addresses sockets that are members of every one of rooms.
func (h *Hub) InAll(rooms ...string) *BroadcastOperator {
	return newBroadcastOperator(h.dispatcher).InAll(rooms...)
}

// Emit broadcasts an event to every registered socket.
func (h *Hub) Emit(event string, args ...any) error {
	return h.Broadcast().Emit(event, args...)
}
