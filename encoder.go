package roomcast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Encoder serializes an application packet into its transport-ready form.
// The dispatcher invokes it once per broadcast, never per socket.
type Encoder interface {
	Encode(packet *Packet) ([]byte, error)
}

// JSONEncoder is the default framing: a packet type byte, the namespace
// followed by ',' when it is not the default one, the ack id digits when
// set, then the JSON body.
type JSONEncoder struct{}

func (JSONEncoder) Encode(packet *Packet) ([]byte, error) {
	var buffer bytes.Buffer

	buffer.WriteByte(packet.Type.Byte())

	if packet.Namespace != "" && packet.Namespace != DefaultNamespace {
		buffer.WriteString(packet.Namespace)
		buffer.WriteByte(',')
	}

	if packet.Id > 0 {
		buffer.WriteString(strconv.Itoa(packet.Id))
	}

	if packet.Data != nil {
		bs, err := json.Marshal(packet.Data)
		if err != nil {
			return nil, err
		}
		buffer.Write(bs)
	}

	return buffer.Bytes(), nil
}

// Decode parses a frame produced by Encode. Transports use it for
// inbound traffic; the core itself never decodes.
func (JSONEncoder) Decode(bs []byte) (*Packet, error) {
	if len(bs) == 0 {
		return nil, errors.New("empty packet")
	}

	pt, err := ParsePacketType(bs[0])
	if err != nil {
		return nil, err
	}
	packet := &Packet{Type: pt, Namespace: DefaultNamespace}
	i := 1

	// Namespace
	if i < len(bs) && bs[i] == '/' {
		begin := i
		for i < len(bs) && bs[i] != ',' {
			i++
		}
		packet.Namespace = string(bs[begin:i])
		if i < len(bs) {
			i++
		}
	}

	// Ack id
	if i < len(bs) && isDigit(bs[i]) {
		begin := i
		for i < len(bs) && isDigit(bs[i]) {
			i++
		}
		id, err := strconv.Atoi(string(bs[begin:i]))
		if err != nil {
			return nil, err
		}
		packet.Id = id
	}

	// Data
	if i < len(bs) {
		dec := json.NewDecoder(bytes.NewReader(bs[i:]))
		dec.UseNumber()
		var payload any
		if err := dec.Decode(&payload); err != nil {
			return nil, err
		}
		packet.Data = payload
	}

	return packet, nil
}

// EventName extracts the event name from an event packet.
func EventName(packet *Packet) (string, error) {
	data, ok := packet.Data.([]any)
	if !ok || len(data) == 0 {
		return "", fmt.Errorf("invalid event packet: %+v", packet)
	}
	name, ok := data[0].(string)
	if !ok {
		return "", fmt.Errorf("invalid event packet name: %+v", packet)
	}
	return name, nil
}

// EventArgs returns the arguments following the event name. Nil for a
// packet that is not a well-formed event.
func EventArgs(packet *Packet) []any {
	data, ok := packet.Data.([]any)
	if !ok || len(data) == 0 {
		return nil
	}
	return data[1:]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
