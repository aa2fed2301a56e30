package roomcast

import (
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher fans a resolved target set out to per-socket actions.
// Delivery is fire-and-forget: send failures are logged, never returned,
// and one socket's failure does not affect the others.
type Dispatcher struct {
	resolver *Resolver
	encoder  Encoder

	logger *zap.SugaredLogger
}

func NewDispatcher(resolver *Resolver, encoder Encoder, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		encoder:  encoder,
		logger:   logger,
	}
}

// Broadcast encodes packet once and sends it to every socket addressed
// by opts. Only encoding can fail.
func (d *Dispatcher) Broadcast(packet *Packet, opts *BroadcastOptions) error {
	d.logger.Debugf("Broadcast %+v with opts %+v", packet, opts)

	payload, err := d.payload(packet, opts)
	if err != nil {
		return fmt.Errorf("encode packet: %w", err)
	}

	for _, s := range d.resolver.Resolve(opts) {
		if err := s.Send(payload, opts.Flags); err != nil {
			d.logger.Debugf("send to %s: %v", s.ID(), err)
		}
	}
	return nil
}

func (d *Dispatcher) payload(packet *Packet, opts *BroadcastOptions) ([]byte, error) {
	if opts.Flags.PreEncoded {
		if raw, ok := packet.Data.([]byte); ok {
			return raw, nil
		}
	}
	return d.encoder.Encode(packet)
}

// FetchSockets returns the live sockets addressed by opts.
func (d *Dispatcher) FetchSockets(opts *BroadcastOptions) []Socket {
	return d.resolver.Resolve(opts)
}

// SocketsJoin makes every addressed socket join rooms. Each socket acts
// independently; there is no atomicity across the target set.
func (d *Dispatcher) SocketsJoin(opts *BroadcastOptions, rooms ...string) {
	for _, s := range d.resolver.Resolve(opts) {
		s.Join(rooms...)
	}
}

// SocketsLeave makes every addressed socket leave rooms.
func (d *Dispatcher) SocketsLeave(opts *BroadcastOptions, rooms ...string) {
	for _, s := range d.resolver.Resolve(opts) {
		for _, room := range rooms {
			s.Leave(room)
		}
	}
}

// DisconnectSockets disconnects every addressed socket.
func (d *Dispatcher) DisconnectSockets(opts *BroadcastOptions, closeConn bool) {
	for _, s := range d.resolver.Resolve(opts) {
		s.Disconnect(closeConn)
	}
}
