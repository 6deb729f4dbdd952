package ws

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"

	"github.com/verse-server/backend/internal/engine"
	"github.com/verse-server/backend/internal/logging"
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
)

var ErrTooManyConnections = errors.New("too many connections")

type eventKind int

const (
	evAttach eventKind = iota
	evCommand
	evDetach
)

type event struct {
	kind eventKind
	c    *client
	cmd  protocol.Command
}

type client struct {
	h    *Hub
	conn *websocket.Conn
	sess *session.Session
	send chan []byte

	// Owned by the hub goroutine.
	inbox *queue.Queue
	slow  bool
	gone  bool
}

// HubOptions bound the transport side of the hub.
type HubOptions struct {
	MaxConnections int
	SendBuffer     int
	InboundQueue   int
	WriteTimeout   time.Duration
	ReadLimit      int64
}

func DefaultHubOptions() HubOptions {
	return HubOptions{
		SendBuffer:   256,
		InboundQueue: 256,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    1 << 20,
	}
}

// Stats is a point-in-time view of the hub counters.
type Stats struct {
	Connected int64 `json:"connected"`
	Received  int64 `json:"received"`
	Sent      int64 `json:"sent"`
	SlowDrops int64 `json:"slowDrops"`
	Nodes     int64 `json:"nodes"`
}

// Hub connects websocket clients to a single engine. Reader goroutines
// decode frames and hand them to the hub goroutine, which owns the engine
// and takes one command per session in turn so a busy client cannot starve
// the others. The hub is also the engine's Sink.
type Hub struct {
	opts   HubOptions
	codec  protocol.Codec
	log    logging.Logger
	engine *engine.Engine

	mu      sync.RWMutex
	clients map[*client]bool

	events chan event
	done   chan struct{}
	once   sync.Once

	// Owned by the hub goroutine.
	bySession map[*session.Session]*client
	pending   int
	slow      []*client

	connected *atomic.Int64
	received  *atomic.Int64
	sent      *atomic.Int64
	slowDrops *atomic.Int64
	nodes     *atomic.Int64
}

func NewHub(opts HubOptions, engOpts engine.Options, codec protocol.Codec, log logging.Logger) *Hub {
	h := &Hub{
		opts:      opts,
		codec:     codec,
		log:       log,
		clients:   make(map[*client]bool),
		events:    make(chan event, opts.InboundQueue),
		done:      make(chan struct{}),
		bySession: make(map[*session.Session]*client),
		connected: atomic.NewInt64(0),
		received:  atomic.NewInt64(0),
		sent:      atomic.NewInt64(0),
		slowDrops: atomic.NewInt64(0),
		nodes:     atomic.NewInt64(0),
	}
	h.engine = engine.New(engOpts, h, log)
	return h
}

// Collectors returns the engine's metrics plus the hub's own gauges.
func (h *Hub) Collectors() []prometheus.Collector {
	return append(h.engine.Metrics(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "verse",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open websocket connections.",
		}, func() float64 { return float64(h.connected.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "verse",
			Subsystem: "ws",
			Name:      "slow_client_drops_total",
			Help:      "Clients disconnected because their send buffer was full.",
		}, func() float64 { return float64(h.slowDrops.Load()) }),
	)
}

func (h *Hub) Stats() Stats {
	return Stats{
		Connected: h.connected.Load(),
		Received:  h.received.Load(),
		Sent:      h.sent.Load(),
		SlowDrops: h.slowDrops.Load(),
		Nodes:     h.nodes.Load(),
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AddClient registers an upgraded connection and starts its pumps. The
// connection gets a pending session; it must send Connect before anything
// else is accepted.
func (h *Hub) AddClient(conn *websocket.Conn, addr string) (*client, error) {
	h.mu.Lock()
	if h.opts.MaxConnections > 0 && len(h.clients) >= h.opts.MaxConnections {
		h.mu.Unlock()
		return nil, ErrTooManyConnections
	}
	c := &client{
		h:     h,
		conn:  conn,
		sess:  session.New(addr),
		send:  make(chan []byte, h.opts.SendBuffer),
		inbox: queue.New(),
	}
	h.clients[c] = true
	h.mu.Unlock()

	h.connected.Inc()
	h.post(event{kind: evAttach, c: c})
	go c.writePump()
	go c.readPump()
	return c, nil
}

// RemoveClient schedules c for detachment. It is safe to call more than
// once and from any goroutine.
func (h *Hub) RemoveClient(c *client) {
	h.post(event{kind: evDetach, c: c})
}

func (h *Hub) post(ev event) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// Run owns the engine until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return h.Close()
		case <-h.done:
			return nil
		case ev := <-h.events:
			h.accept(ev)
		drain:
			for {
				select {
				case ev := <-h.events:
					h.accept(ev)
				default:
					break drain
				}
			}
			h.dispatch()
			h.nodes.Store(int64(h.engine.NodeCount()))
		}
	}
}

func (h *Hub) accept(ev event) {
	c := ev.c
	switch ev.kind {
	case evAttach:
		h.bySession[c.sess] = c
		h.engine.Attach(c.sess)
	case evCommand:
		if c.gone || c.slow {
			return
		}
		c.inbox.Add(ev.cmd)
		h.pending++
	case evDetach:
		h.detach(c)
	}
}

// dispatch drains the inboxes one command per session per round.
func (h *Hub) dispatch() {
	reg := h.engine.Sessions()
	for h.pending > 0 {
		progressed := false
		for i, n := 0, reg.Len(); i < n; i++ {
			s := reg.Next()
			c := h.bySession[s]
			if c == nil || c.inbox.Length() == 0 {
				continue
			}
			cmd := c.inbox.Remove().(protocol.Command)
			h.pending--
			progressed = true
			h.engine.Dispatch(s, cmd)
			h.reap()
		}
		if !progressed {
			h.pending = 0
		}
	}
	h.reap()
}

// Send implements engine.Sink. A client whose buffer is full is marked
// slow and detached once the current command finishes.
func (h *Hub) Send(to *session.Session, cmd protocol.Command) {
	c := h.bySession[to]
	if c == nil || c.slow || c.gone {
		return
	}
	data, err := h.codec.Encode(cmd)
	if err != nil {
		h.log.Warningf("encode %s for %s: %v", cmd.CommandName(), to, err)
		return
	}
	select {
	case c.send <- data:
		h.sent.Inc()
	default:
		c.slow = true
		h.slow = append(h.slow, c)
		h.slowDrops.Inc()
		h.log.Warningf("client %s too slow, disconnecting", to)
	}
}

func (h *Hub) reap() {
	for len(h.slow) > 0 {
		c := h.slow[0]
		h.slow = h.slow[1:]
		h.detach(c)
	}
}

func (h *Hub) detach(c *client) {
	if c.gone {
		return
	}
	c.gone = true
	h.pending -= c.inbox.Length()
	for c.inbox.Length() > 0 {
		c.inbox.Remove()
	}
	h.engine.Detach(c.sess)
	delete(h.bySession, c.sess)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	close(c.send)
	h.connected.Dec()
	h.log.Infof("client %s disconnected", c.sess)
}

// Close stops the hub and closes every connection.
func (h *Hub) Close() error {
	var result *multierror.Error
	h.once.Do(func() {
		close(h.done)

		h.mu.Lock()
		clients := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.Unlock()

		for _, c := range clients {
			if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				result = multierror.Append(result, err)
			}
		}
	})
	return result.ErrorOrNil()
}

// writePump exits when the client is detached or the hub closes.
func (c *client) writePump() {
	defer c.conn.Close()
	typ := websocket.TextMessage
	if c.h.codec.Binary() {
		typ = websocket.BinaryMessage
	}
	for {
		var msg []byte
		select {
		case <-c.h.done:
			return
		case m, ok := <-c.send:
			if !ok {
				return
			}
			msg = m
		}
		if c.h.opts.WriteTimeout > 0 {
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.h.opts.WriteTimeout))
		}
		if err := c.conn.WriteMessage(typ, msg); err != nil {
			c.h.log.Debugf("write to %s: %v", c.sess.Address, err)
			c.h.RemoveClient(c)
			return
		}
	}
}

func (c *client) readPump() {
	defer c.h.RemoveClient(c)
	if c.h.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(c.h.opts.ReadLimit)
	}
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.h.log.Debugf("read from %s: %v", c.sess.Address, err)
			}
			return
		}
		cmd, err := c.h.codec.Decode(data)
		if err != nil {
			c.h.log.Warningf("bad frame from %s: %v", c.sess.Address, err)
			continue
		}
		c.h.received.Inc()
		c.h.post(event{kind: evCommand, c: c, cmd: cmd})
	}
}
