package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/annieversary/sorg/internal/logfields"
)

// Protocol is the websocket subprotocol the reload script connects
// with. The server must echo it back or browsers abort the handshake.
const Protocol = "sorg"

// reloadMessage is what connected pages receive; the script reloads on
// any message, the payload is informational.
const reloadMessage = "reload"

// Hub tracks connected browsers and broadcasts reload messages after
// rebuilds.
type Hub struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub builds an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, conns: make(map[*websocket.Conn]struct{})}
}

// Handler returns the websocket endpoint. Each connection is held open
// until the browser navigates away or reloads.
func (h *Hub) Handler() http.Handler {
	server := websocket.Server{
		Handshake: func(cfg *websocket.Config, _ *http.Request) error {
			cfg.Protocol = []string{Protocol}
			return nil
		},
		Handler: func(ws *websocket.Conn) {
			h.add(ws)
			defer h.remove(ws)
			// Browsers never send anything; block until the peer goes away.
			_, _ = io.Copy(io.Discard, ws)
		},
	}
	return server
}

// Broadcast tells every connected page to reload. Dead connections are
// dropped.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.conns {
		if err := websocket.Message.Send(ws, reloadMessage); err != nil {
			ws.Close()
			delete(h.conns, ws)
		}
	}
}

// ListenAndServe runs the reload endpoint until ctx is done.
func (h *Hub) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: h.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.log.Info("reload endpoint listening", slog.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		h.log.Error("reload endpoint failed", logfields.Error(err))
		return err
	}
	return nil
}

func (h *Hub) add(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[ws] = struct{}{}
}

func (h *Hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, ws)
	ws.Close()
}
