package main

import (
	"net/http"

	engineigo "github.com/taogames/engine.igo"
	"github.com/taogames/engine.igo/message"
	"go.uber.org/zap"

	"github.com/mkrill/roomcast"
)

// engineSocket adapts an Engine.IO session to the roomcast.Socket
// capability.
type engineSocket struct {
	hub     *roomcast.Hub
	session *engineigo.Session

	logger *zap.SugaredLogger
}

func (s *engineSocket) ID() string {
	return s.session.ID()
}

func (s *engineSocket) Send(payload []byte, flags roomcast.Flags) error {
	return s.session.WriteMessage(&message.Message{Type: message.MTText, Data: payload})
}

func (s *engineSocket) Join(rooms ...string) {
	s.hub.Adapter().Join(s.ID(), rooms...)
}

func (s *engineSocket) Leave(room string) {
	s.hub.Adapter().Leave(s.ID(), room)
}

func (s *engineSocket) Disconnect(closeConn bool) {
	s.hub.Disconnect(s.ID())
	if closeConn {
		s.session.Close()
	}
}

func (s *engineSocket) start() {
	enc := roomcast.JSONEncoder{}
	for {
		mt, bs, err := s.session.ReadMessage()
		if err != nil {
			s.logger.Debugf("closing: %s", roomcast.DRTransportError)
			s.Disconnect(true)
			return
		}
		if mt != message.MTText {
			continue
		}

		packet, err := enc.Decode(bs)
		if err != nil {
			s.logger.Debugf("decode: %v", err)
			continue
		}
		if packet.Type != roomcast.PacketEvent {
			continue
		}

		name, err := roomcast.EventName(packet)
		if err != nil {
			continue
		}
		args := roomcast.EventArgs(packet)

		switch name {
		case "join":
			for _, arg := range args {
				if room, ok := arg.(string); ok {
					s.Join(room)
				}
			}
		case "leave":
			if len(args) > 0 {
				if room, ok := args[0].(string); ok {
					s.Leave(room)
				}
			}
		case "chat":
			if len(args) < 2 {
				continue
			}
			room, ok := args[0].(string)
			if !ok {
				continue
			}
			s.hub.To(room).Except(s.ID()).Emit("chat", args[1])
		}
	}
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()

	hub := roomcast.NewHub(roomcast.WithLogger(sugar))
	engine := engineigo.NewServer(engineigo.WithLogger(sugar))

	go func() {
		for {
			session := <-engine.Accept()
			sugar.Infof("Engine.IO connection received: %s", session.ID())

			s := &engineSocket{
				hub:     hub,
				session: session,
				logger:  sugar.With("Socket", session.ID()),
			}
			hub.Connect(s)
			go s.start()
		}
	}()

	router := http.NewServeMux()
	router.Handle("/engine.io/", engine)

	if err := http.ListenAndServe(":3000", router); err != nil {
		panic(err)
	}
}
