// Package ws streams live trade events and periodic depth frames to
// websocket subscribers. The feed is lossy on purpose: a slow consumer
// is disconnected rather than allowed to apply back-pressure to the
// matching path.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bulkbook/api/wire"
	"bulkbook/domain/book"
	"bulkbook/infra/memory"
	"bulkbook/service"
)

const (
	writeTimeout   = 2 * time.Second
	drainInterval  = 50 * time.Millisecond
	depthEveryTick = 10
)

type fillFrame struct {
	Type  string `json:"type"`
	Seq   uint64 `json:"seq"`
	Taker string `json:"taker"`
	Fills []struct {
		MakerID uint64 `json:"maker_id"`
		Price   int64  `json:"price"`
		Qty     int64  `json:"qty"`
	} `json:"fills"`
}

type depthFrame struct {
	Type string            `json:"type"`
	Seq  uint64            `json:"seq"`
	Bids []book.LevelQuote `json:"bids"`
	Asks []book.LevelQuote `json:"asks"`
}

type Hub struct {
	svc    *service.OrderService
	ring   *memory.Ring
	levels int
	log    *slog.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(svc *service.OrderService, ring *memory.Ring, levels int, log *slog.Logger) *Hub {
	return &Hub{
		svc:    svc,
		ring:   ring,
		levels: levels,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades an HTTP request to a feed subscription.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	h.log.Info("ws subscriber connected", "total", n)

	// Reader loop only detects close; the feed is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

// Run drains the event ring and pushes frames until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			for {
				v := h.ring.Dequeue()
				if v == nil {
					break
				}
				if ev, ok := v.(*wire.FillEvent); ok {
					h.broadcast(makeFillFrame(ev))
				}
			}

			tick++
			if tick%depthEveryTick == 0 {
				h.broadcast(&depthFrame{
					Type: "depth",
					Seq:  h.svc.Sequence(),
					Bids: h.svc.Depth(book.Bid, h.levels),
					Asks: h.svc.Depth(book.Ask, h.levels),
				})
			}
		}
	}
}

func makeFillFrame(ev *wire.FillEvent) *fillFrame {
	f := &fillFrame{Type: "fill", Seq: ev.Seq, Taker: ev.Taker.String()}
	for _, fill := range ev.Fills {
		f.Fills = append(f.Fills, struct {
			MakerID uint64 `json:"maker_id"`
			Price   int64  `json:"price"`
			Qty     int64  `json:"qty"`
		}{fill.MakerID, fill.Price, fill.Qty})
	}
	return f
}

func (h *Hub) broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("ws marshal failed", "err", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if present {
		_ = c.Close()
		h.log.Info("ws subscriber dropped")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}
