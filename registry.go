package roomcast

import (
	"sync"

	"go.uber.org/zap"
)

// Registry is the source of truth for room membership. It keeps the
// room→sockets and socket→rooms indices consistent under a single lock:
// after every mutation a socket is in a room's member set iff the room is
// in the socket's room set, and a room exists iff it has members.
//
// Rooms are created by the first join and deleted by the last leave.
// Socket entries are created by AddSocket or the first join and removed
// only by RemoveSocket.
type Registry struct {
	mu sync.RWMutex

	sids  map[string]map[string]struct{} // Map<SocketId, Set<Room>>
	rooms map[string]map[string]struct{} // Map<Room, Set<SocketId>>

	observers []Observer

	logger *zap.SugaredLogger
}

type RegistryOption func(r *Registry)

func WithRegistryLogger(logger *zap.SugaredLogger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		sids:   make(map[string]map[string]struct{}),
		rooms:  make(map[string]map[string]struct{}),
		logger: zap.NewNop().Sugar(),
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Subscribe registers o for lifecycle events. Observers registered during
// a mutation see only subsequent mutations.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// AddSocket registers sid with an empty room set. No-op if already known.
func (r *Registry) AddSocket(sid string) {
	r.mu.Lock()
	if _, ok := r.sids[sid]; !ok {
		r.sids[sid] = make(map[string]struct{})
	}
	r.mu.Unlock()
}

// Join adds sid to each room, creating rooms as needed. Rooms already
// containing sid are skipped. Events fire per room in the order given:
// RoomCreated for a new room, then SocketJoined.
func (r *Registry) Join(sid string, rooms ...string) {
	r.logger.Debugf("%s Join %v", sid, rooms)

	r.mu.Lock()
	if _, ok := r.sids[sid]; !ok {
		r.sids[sid] = make(map[string]struct{})
	}

	var events []event
	for _, room := range rooms {
		if _, ok := r.sids[sid][room]; ok {
			continue
		}

		if _, ok := r.rooms[room]; !ok {
			r.rooms[room] = make(map[string]struct{})
			events = append(events, event{kind: evRoomCreated, room: room})
		}
		r.sids[sid][room] = struct{}{}
		r.rooms[room][sid] = struct{}{}
		events = append(events, event{kind: evSocketJoined, room: room, sid: sid})
	}
	observers := r.observerList()
	r.mu.Unlock()

	deliver(observers, events)
}

// Leave removes sid from room. If the room empties it is deleted.
// No-op when sid is not a member.
func (r *Registry) Leave(sid string, room string) {
	r.logger.Debugf("%s Leave %v", sid, room)

	r.mu.Lock()
	events := r.leaveLocked(sid, room)
	observers := r.observerList()
	r.mu.Unlock()

	deliver(observers, events)
}

// RemoveSocket removes sid from every room it occupies, then forgets it
// entirely. No-op for unknown sockets.
func (r *Registry) RemoveSocket(sid string) {
	r.logger.Debugf("%s RemoveSocket", sid)

	r.mu.Lock()
	roomSet, ok := r.sids[sid]
	if !ok {
		r.mu.Unlock()
		return
	}

	var events []event
	for room := range roomSet {
		events = append(events, r.leaveLocked(sid, room)...)
	}
	delete(r.sids, sid)
	observers := r.observerList()
	r.mu.Unlock()

	deliver(observers, events)
}

// leaveLocked removes the (room, sid) edge and returns the events it
// produced. Caller holds the write lock.
func (r *Registry) leaveLocked(sid, room string) []event {
	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	if _, ok := members[sid]; !ok {
		return nil
	}

	delete(members, sid)
	delete(r.sids[sid], room)

	events := []event{{kind: evSocketLeft, room: room, sid: sid}}
	if len(members) == 0 {
		delete(r.rooms, room)
		events = append(events, event{kind: evRoomDeleted, room: room})
	}
	return events
}

// observerList snapshots the observer slice. Caller holds the lock.
func (r *Registry) observerList() []Observer {
	if len(r.observers) == 0 {
		return nil
	}
	return append([]Observer(nil), r.observers...)
}

// RoomsOf returns a copy of sid's room set. ok is false when sid was
// never registered; a registered socket with no rooms yields an empty set.
func (r *Registry) RoomsOf(sid string) (map[string]struct{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomSet, ok := r.sids[sid]
	if !ok {
		return nil, false
	}
	out := make(map[string]struct{}, len(roomSet))
	for room := range roomSet {
		out[room] = struct{}{}
	}
	return out, true
}

// Members lists the socket ids currently in room. Unknown rooms yield nil.
func (r *Registry) Members(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for sid := range members {
		out = append(out, sid)
	}
	return out
}

// Rooms lists the currently existing rooms.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.rooms))
	for room := range r.rooms {
		out = append(out, room)
	}
	return out
}

// SocketCount reports the number of registered sockets.
func (r *Registry) SocketCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sids)
}
