package roomcast

// Observer receives lifecycle notifications from a Registry. Delivery is
// synchronous: every observer runs before the mutating call returns.
// Within a single mutation RoomCreated precedes SocketJoined for the same
// room, and SocketLeft precedes RoomDeleted. Panics are not isolated and
// propagate to the caller of the mutation.
type Observer interface {
	RoomCreated(room string)
	RoomDeleted(room string)
	SocketJoined(room, sid string)
	SocketLeft(room, sid string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnRoomCreated  func(room string)
	OnRoomDeleted  func(room string)
	OnSocketJoined func(room, sid string)
	OnSocketLeft   func(room, sid string)
}

func (o ObserverFuncs) RoomCreated(room string) {
	if o.OnRoomCreated != nil {
		o.OnRoomCreated(room)
	}
}

func (o ObserverFuncs) RoomDeleted(room string) {
	if o.OnRoomDeleted != nil {
		o.OnRoomDeleted(room)
	}
}

func (o ObserverFuncs) SocketJoined(room, sid string) {
	if o.OnSocketJoined != nil {
		o.OnSocketJoined(room, sid)
	}
}

func (o ObserverFuncs) SocketLeft(room, sid string) {
	if o.OnSocketLeft != nil {
		o.OnSocketLeft(room, sid)
	}
}

type eventKind int

const (
	evRoomCreated eventKind = iota
	evRoomDeleted
	evSocketJoined
	evSocketLeft
)

// event is a lifecycle notification recorded during a mutation and
// delivered once the registry lock is released.
type event struct {
	kind eventKind
	room string
	sid  string
}

func deliver(observers []Observer, events []event) {
	for _, ev := range events {
		for _, o := range observers {
			switch ev.kind {
			case evRoomCreated:
				o.RoomCreated(ev.room)
			case evRoomDeleted:
				o.RoomDeleted(ev.room)
			case evSocketJoined:
				o.SocketJoined(ev.room, ev.sid)
			case evSocketLeft:
				o.SocketLeft(ev.room, ev.sid)
			}
		}
	}
}
