package roomcast

import "fmt"

const DefaultNamespace = "/"

type Packet struct {
	Type      PacketType
	Namespace string
	Id        int
	Data      any
}

type PacketType int

const (
	PacketConnect PacketType = iota
	PacketDisconnect
	PacketEvent
	PacketAck
	PacketConnectError
)

func (pt PacketType) Byte() byte {
	return byte(pt) + '0'
}

func ParsePacketType(b byte) (PacketType, error) {
	pt := PacketType(b - '0')
	if pt < PacketConnect || pt > PacketConnectError {
		return 0, fmt.Errorf("packet type invalid: %c", b)
	}
	return pt, nil
}

// EventPacket builds an event packet in the shape the default encoder
// expects: data[0] is the event name, the rest are arguments.
func EventPacket(namespace, event string, args ...any) *Packet {
	data := append([]any{event}, args...)
	return &Packet{
		Type:      PacketEvent,
		Namespace: namespace,
		Data:      data,
	}
}

type DisconnectReason string

const (
	DRServerDisconnect DisconnectReason = "server disconnect"
	DRClientDisconnect DisconnectReason = "client disconnect"
	DRTransportClose   DisconnectReason = "transport close"
	DRTransportError   DisconnectReason = "transport error"
)
