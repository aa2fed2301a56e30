package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mkrill/roomcast"
)

type config struct {
	Addr       string        `mapstructure:"addr"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`
}

func loadConfig() (*config, error) {
	v := viper.New()
	v.SetConfigName("chat")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("addr", ":3000")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 16)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// wsSocket adapts one websocket connection to the roomcast.Socket
// capability. Outbound payloads go through a buffered channel drained by
// the write loop, so Send never blocks the dispatcher.
type wsSocket struct {
	id   string
	hub  *roomcast.Hub
	conn *websocket.Conn

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once

	writeWait time.Duration
	logger    *zap.SugaredLogger
}

func (s *wsSocket) ID() string {
	return s.id
}

func (s *wsSocket) Send(payload []byte, flags roomcast.Flags) error {
	select {
	case s.out <- payload:
		return nil
	default:
		if flags.Volatile {
			return nil
		}
		return fmt.Errorf("socket %s: send buffer full", s.id)
	}
}

func (s *wsSocket) Join(rooms ...string) {
	s.hub.Adapter().Join(s.id, rooms...)
}

func (s *wsSocket) Leave(room string) {
	s.hub.Adapter().Leave(s.id, room)
}

func (s *wsSocket) Disconnect(closeConn bool) {
	s.hub.Disconnect(s.id)
	if closeConn {
		s.close()
	}
}

func (s *wsSocket) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

func (s *wsSocket) writeLoop() {
	for {
		select {
		case payload := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debugf("write: %v", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *wsSocket) readLoop() {
	defer func() {
		s.logger.Debugf("closing: %s", roomcast.DRTransportClose)
		s.hub.Disconnect(s.id)
		s.close()
	}()

	enc := roomcast.JSONEncoder{}
	for {
		_, bs, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		packet, err := enc.Decode(bs)
		if err != nil {
			s.logger.Debugf("decode: %v", err)
			continue
		}
		if packet.Type != roomcast.PacketEvent {
			continue
		}
		s.dispatch(packet)
	}
}

func (s *wsSocket) dispatch(packet *roomcast.Packet) {
	name, err := roomcast.EventName(packet)
	if err != nil {
		s.logger.Debugf("dispatch: %v", err)
		return
	}
	args := roomcast.EventArgs(packet)

	switch name {
	case "join":
		for _, arg := range args {
			room, ok := arg.(string)
			if !ok {
				continue
			}
			s.Join(room)
			s.hub.To(room).Except(s.id).Emit("user joined", map[string]any{
				"room": room,
				"sid":  s.id,
			})
		}
	case "leave":
		if len(args) == 0 {
			return
		}
		room, ok := args[0].(string)
		if !ok {
			return
		}
		s.Leave(room)
		s.hub.To(room).Emit("user left", map[string]any{
			"room": room,
			"sid":  s.id,
		})
	case "message":
		if len(args) < 2 {
			return
		}
		room, ok := args[0].(string)
		if !ok {
			return
		}
		s.hub.To(room).Except(s.id).Emit("message", map[string]any{
			"room": room,
			"from": s.id,
			"text": args[1],
		})
	}
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()

	cfg, err := loadConfig()
	if err != nil {
		sugar.Fatalf("load config: %v", err)
	}

	hub := roomcast.NewHub(roomcast.WithLogger(sugar))
	metrics := roomcast.NewMetrics(prometheus.DefaultRegisterer)
	hub.Adapter().Subscribe(metrics)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	router := http.NewServeMux()
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			sugar.Errorf("upgrade: %v", err)
			return
		}
		conn.SetReadLimit(cfg.ReadLimit)

		s := &wsSocket{
			id:        uuid.NewString(),
			hub:       hub,
			conn:      conn,
			out:       make(chan []byte, cfg.SendBuffer),
			done:      make(chan struct{}),
			writeWait: cfg.WriteWait,
			logger:    sugar.With("Socket", conn.RemoteAddr().String()),
		}
		hub.Connect(s)

		go s.writeLoop()
		go s.readLoop()
	})

	sugar.Infof("chat server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, handlers.CORS()(router)); err != nil {
		sugar.Fatalf("listen: %v", err)
	}
}
