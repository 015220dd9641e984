package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/E1Shivank/whispr/internal/app/orch"
	"github.com/E1Shivank/whispr/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Settings are the per-connection transport limits.
type Settings struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	RateEvents     int
	RateInterval   time.Duration
	AllowedOrigins []string
}

func (s Settings) withDefaults() Settings {
	if s.ReadLimit <= 0 {
		s.ReadLimit = 64 << 10
	}
	if s.PongWait <= 0 {
		s.PongWait = 60 * time.Second
	}
	if s.PingPeriod <= 0 || s.PingPeriod >= s.PongWait {
		s.PingPeriod = s.PongWait * 9 / 10
	}
	if s.WriteWait <= 0 {
		s.WriteWait = 5 * time.Second
	}
	if s.SendBuffer <= 0 {
		s.SendBuffer = 64
	}
	return s
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	settings Settings
	upgrader websocket.Upgrader
	validate *validator.Validate
	handlers map[string]handler
}

func NewSignalWSController(o *orch.Orchestrator, settings Settings) *SignalWSController {
	settings = settings.withDefaults()
	ctl := &SignalWSController{
		Orch:     o,
		settings: settings,
		validate: validator.New(),
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	ctl.handlers = ctl.routes()
	return ctl
}

func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	if len(ctl.settings.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(ctl.settings.AllowedOrigins, r.Header.Get("Origin"))
}

// WsSignalConn is the transport handle of one client. Frames are queued on a
// bounded channel and written by the connection's own write pump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump flushes what is queued and then
// closes the socket, which in turn ends the read pump.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	label := c.GetString("client_token")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := core.NewConnID()
	conn := newWsSignalConn(ws, ctl.settings.SendBuffer)
	ctl.Orch.Connect(id, conn, label)
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("client", label).Msg("new WS connection")

	sess := newSession(id, conn, newRateLimiter(ctl.settings.RateEvents, ctl.settings.RateInterval))
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sess)
	}()
}
