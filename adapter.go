package roomcast

// Adapter is the membership surface the broadcast layer works against.
// Registry is the in-memory single-process implementation; a replicated
// variant would implement the same interface.
type Adapter interface {
	// AddSocket registers sid with an empty room set.
	AddSocket(sid string)

	// Join idempotently adds sid to each room.
	Join(sid string, rooms ...string)

	// Leave removes sid from room if present.
	Leave(sid string, room string)

	// RemoveSocket removes sid from every room and forgets it.
	RemoveSocket(sid string)

	// RoomsOf reports the rooms sid belongs to. ok is false when sid was
	// never registered, which is distinct from a registered socket with
	// an empty room set.
	RoomsOf(sid string) (rooms map[string]struct{}, ok bool)

	// Members lists the socket ids in room.
	Members(room string) []string

	// Targets computes the socket ids addressed by opts.
	Targets(opts *BroadcastOptions) []string

	// Subscribe registers an observer for lifecycle events.
	Subscribe(o Observer)
}

// BroadcastOptions describes who a broadcast is addressed to.
//
// A socket found in any of Rooms is a candidate; an empty Rooms slice
// addresses every registered socket. A socket found in any of Except is
// dropped regardless of candidacy. When Merge is non-empty a candidate
// must additionally be a member of every room in it.
type BroadcastOptions struct {
	Rooms  []string
	Except []string
	Merge  []string

	Flags Flags
}
