package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-facecam/internal/log"
)

// Options configures a Hub.
type Options struct {
	// Replay turns the hub into a latest-value channel: the most recent
	// message is sent to clients as they connect, bursts are coalesced, and
	// a full client queue gives up its oldest entry so the newest message
	// always arrives.
	Replay bool

	// SendBuffer is the per-client queue length. Frames for a client whose
	// queue is full are dropped for that client only.
	SendBuffer int

	Logger *slog.Logger
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	opts   Options
	logger *slog.Logger

	clients    map[*Client]struct{}
	broadcast  chan Message
	notify     chan struct{}
	register   chan *Client
	unregister chan *Client

	mu    sync.RWMutex
	count int
	last  *Message

	running atomic.Bool
	dropped atomic.Uint64
	done    chan struct{}
}

// New creates a Hub. Call Run before registering clients.
func New(name string, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 4
	}
	if opts.Logger == nil {
		opts.Logger = log.With("component", "hub", "hub", name)
	}
	return &Hub{
		opts:       opts,
		logger:     opts.Logger,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 16),
		notify:     make(chan struct{}, 1),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled, then disconnects
// everyone. It should be called in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.mu.Lock()
			h.count = len(h.clients)
			last := h.last
			h.mu.Unlock()
			if h.opts.Replay && last != nil {
				h.replace(c, *last)
			}
			h.logger.Debug("client connected", "client", c.ID, "total", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
				h.logger.Debug("client disconnected", "client", c.ID, "remaining", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				h.deliver(c, msg)
			}

		case <-h.notify:
			h.mu.RLock()
			last := h.last
			h.mu.RUnlock()
			if last == nil {
				continue
			}
			for c := range h.clients {
				h.replace(c, *last)
			}
		}
	}
}

// remove must only be called from Run.
func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

func (h *Hub) deliver(c *Client, msg Message) {
	select {
	case c.send <- msg:
	default:
		h.dropped.Add(1)
	}
}

// replace queues msg for c, evicting the oldest queued message when the
// queue is full. Only Run sends on c.send, so the second send cannot block.
func (h *Hub) replace(c *Client, msg Message) {
	select {
	case c.send <- msg:
		return
	default:
	}
	select {
	case <-c.send:
		h.dropped.Add(1)
	default:
	}
	c.send <- msg
}

// Broadcast queues msg for all connected clients. It never blocks. On a
// Replay hub the latest message always reaches every client; otherwise a
// message is dropped when the hub is backed up.
func (h *Hub) Broadcast(msg Message) {
	if h.opts.Replay {
		h.mu.Lock()
		h.last = &msg
		h.mu.Unlock()
		select {
		case h.notify <- struct{}{}:
		default:
		}
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(NewJSONMessage(data))
	return nil
}

// BroadcastBinary broadcasts binary data (JPEG frames)
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(NewBinaryMessage(data))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Dropped returns how many per-client deliveries were skipped.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
