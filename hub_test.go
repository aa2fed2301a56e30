package roomcast

import (
	"testing"

	"go.uber.org/zap"
)

// hubSocket behaves like a transport-side socket: membership calls are
// routed back through the hub's adapter.
type hubSocket struct {
	id  string
	hub *Hub

	sent  [][]byte
	flags []Flags
}

func (s *hubSocket) ID() string { return s.id }

func (s *hubSocket) Send(payload []byte, flags Flags) error {
	s.sent = append(s.sent, payload)
	s.flags = append(s.flags, flags)
	return nil
}

func (s *hubSocket) Join(rooms ...string) { s.hub.Adapter().Join(s.id, rooms...) }

func (s *hubSocket) Leave(room string) { s.hub.Adapter().Leave(s.id, room) }

func (s *hubSocket) Disconnect(closeConn bool) { s.hub.Disconnect(s.id) }

func newTestHub(t *testing.T, ids ...string) (*Hub, map[string]*hubSocket) {
	t.Helper()
	hub := NewHub(WithLogger(zap.NewNop().Sugar()))
	sockets := make(map[string]*hubSocket, len(ids))
	for _, id := range ids {
		s := &hubSocket{id: id, hub: hub}
		hub.Connect(s)
		sockets[id] = s
	}
	return hub, sockets
}

func TestHub_ConnectJoinsOwnRoom(t *testing.T) {
	hub, _ := newTestHub(t, "s1")

	if _, ok := hub.FindSocket("s1"); !ok {
		t.Fatal("connected socket not findable")
	}
	rooms, ok := hub.Adapter().RoomsOf("s1")
	if !ok {
		t.Fatal("connected socket not registered")
	}
	if _, ok := rooms["s1"]; !ok {
		t.Errorf("rooms %v, want the own-id room", rooms)
	}
}

func TestHub_DisconnectCleansUp(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2")
	sockets["s1"].Join("general")

	hub.Disconnect("s1")

	if _, ok := hub.FindSocket("s1"); ok {
		t.Error("disconnected socket still findable")
	}
	if _, ok := hub.Adapter().RoomsOf("s1"); ok {
		t.Error("disconnected socket still registered")
	}
	if got := hub.Adapter().Members("general"); len(got) != 0 {
		t.Errorf("general still has members %v", got)
	}
	if _, ok := hub.FindSocket("s2"); !ok {
		t.Error("unrelated socket lost")
	}
}

func TestHub_EmitReachesEveryone(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2", "s3")

	if err := hub.Emit("announce", "hello"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for id, s := range sockets {
		if len(s.sent) != 1 {
			t.Errorf("socket %s received %d payloads, want 1", id, len(s.sent))
		}
	}
}

func TestHub_ToTargetsRoomMembers(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2", "s3")
	sockets["s1"].Join("general")
	sockets["s2"].Join("general")

	if err := hub.To("general").Emit("message", "hi"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(sockets["s1"].sent) != 1 || len(sockets["s2"].sent) != 1 {
		t.Error("room members missed the broadcast")
	}
	if len(sockets["s3"].sent) != 0 {
		t.Error("non-member received the broadcast")
	}

	packet, err := JSONEncoder{}.Decode(sockets["s1"].sent[0])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	name, err := EventName(packet)
	if err != nil || name != "message" {
		t.Errorf("event name %q (%v), want message", name, err)
	}
}

func TestHub_ExceptSenderViaOwnRoom(t *testing.T) {
	hub, sockets := newTestHub(t, "sender", "other")
	sockets["sender"].Join("general")
	sockets["other"].Join("general")

	if err := hub.To("general").Except("sender").Emit("message", "hi"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(sockets["sender"].sent) != 0 {
		t.Error("sender received its own broadcast")
	}
	if len(sockets["other"].sent) != 1 {
		t.Error("other member missed the broadcast")
	}
}

func TestHub_InAllIntersection(t *testing.T) {
	hub, sockets := newTestHub(t, "both", "only1")
	sockets["both"].Join("r1")
	sockets["both"].Join("r2")
	sockets["only1"].Join("r1")

	if err := hub.To("r1", "r2").InAll("r1", "r2").Emit("secret"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(sockets["both"].sent) != 1 {
		t.Error("socket in every room missed the broadcast")
	}
	if len(sockets["only1"].sent) != 0 {
		t.Error("socket failing the intersection received the broadcast")
	}
}

func TestBroadcastOperator_ChainingDoesNotMutateParent(t *testing.T) {
	hub, _ := newTestHub(t)

	base := hub.To("r1")
	withExcept := base.Except("r2")
	withMore := base.To("r3")

	if len(base.except) != 0 {
		t.Errorf("parent except %v mutated by child", base.except)
	}
	if len(base.rooms) != 1 {
		t.Errorf("parent rooms %v mutated by child", base.rooms)
	}
	if len(withExcept.rooms) != 1 || len(withExcept.except) != 1 {
		t.Errorf("child operator wrong: rooms %v except %v", withExcept.rooms, withExcept.except)
	}
	if len(withMore.rooms) != 2 {
		t.Errorf("sibling operator rooms %v, want two", withMore.rooms)
	}
}

func TestBroadcastOperator_VolatileFlagSet(t *testing.T) {
	hub, sockets := newTestHub(t, "s1")

	if err := hub.Broadcast().Volatile().Emit("tick"); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if !sockets["s1"].flags[0].Volatile {
		t.Error("volatile flag not passed to the socket")
	}
}

func TestBroadcastOperator_SocketsJoinUpdatesMembership(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2", "s3")
	sockets["s1"].Join("general")
	sockets["s2"].Join("general")

	hub.To("general").SocketsJoin("announcements")

	members := hub.Adapter().Members("announcements")
	if len(members) != 2 {
		t.Errorf("announcements members %v, want the two general members", members)
	}
	if rooms, _ := hub.Adapter().RoomsOf("s3"); len(rooms) != 1 {
		t.Errorf("s3 rooms %v, should be untouched", rooms)
	}
}

func TestBroadcastOperator_SocketsLeaveUpdatesMembership(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2")
	sockets["s1"].Join("general")
	sockets["s2"].Join("general")

	hub.To("general").SocketsLeave("general")

	if got := hub.Adapter().Members("general"); len(got) != 0 {
		t.Errorf("general members %v, want none", got)
	}
}

func TestBroadcastOperator_DisconnectSockets(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2")
	sockets["s1"].Join("general")

	hub.To("general").DisconnectSockets(false)

	if _, ok := hub.FindSocket("s1"); ok {
		t.Error("targeted socket still connected")
	}
	if _, ok := hub.FindSocket("s2"); !ok {
		t.Error("untargeted socket disconnected")
	}
}

func TestBroadcastOperator_FetchSockets(t *testing.T) {
	hub, sockets := newTestHub(t, "s1", "s2")
	sockets["s1"].Join("general")

	got := hub.To("general").FetchSockets()
	if len(got) != 1 || got[0].ID() != "s1" {
		t.Errorf("fetched %d sockets, want just s1", len(got))
	}
}

func TestBroadcastOperator_EmitRaw(t *testing.T) {
	hub, sockets := newTestHub(t, "s1")

	raw := []byte(`2["prebuilt",1]`)
	if err := hub.Broadcast().EmitRaw(raw); err != nil {
		t.Fatalf("EmitRaw: %v", err)
	}

	if string(sockets["s1"].sent[0]) != string(raw) {
		t.Errorf("payload %q, want %q", sockets["s1"].sent[0], raw)
	}
	if !sockets["s1"].flags[0].PreEncoded {
		t.Error("pre-encoded flag not set on delivery")
	}
}
