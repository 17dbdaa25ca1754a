package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pccr10001/ofonomock/internal/logic"
	"github.com/pccr10001/ofonomock/internal/ofono"
	"github.com/pccr10001/ofonomock/pkg/logger"
)

const (
	wsSendBuffer   = 64
	wsWriteTimeout = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	send chan logic.SignalEvent
}

// SignalHub pushes every emitted signal to the connected websocket clients.
// A client that falls behind loses signals rather than stalling the mock.
type SignalHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewSignalHub() *SignalHub {
	return &SignalHub{clients: make(map[*wsClient]struct{})}
}

func (h *SignalHub) Publish(sig ofono.Signal) {
	ev := logic.NewSignalEvent(sig)

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
			logger.Log.Warnf("Dropping %s for slow websocket client", ev.Name)
		}
	}
}

func (h *SignalHub) register() *wsClient {
	cl := &wsClient{send: make(chan logic.SignalEvent, wsSendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	return cl
}

func (h *SignalHub) unregister(cl *wsClient) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
}

func (h *SignalHub) Serve(c *gin.Context) {
	// Registered before the handshake completes so a client sees every
	// signal emitted after its dial returns.
	cl := h.register()
	defer h.unregister(cl)

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Errorf("upgrade websocket failed: %v", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Log.Warnf("write signal failed: %v", err)
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
