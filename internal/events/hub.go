package events

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Client is one subscriber of the admin change feed.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans change events out to every connected admin and keeps the reduced state
// so late subscribers can catch up.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan ChangeEvent
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	seq     atomic.Int64
	reducer *Reducer
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan ChangeEvent, sendBuffer),
		done:       make(chan struct{}),
		reducer:    NewReducer(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run is the hub's main loop; it returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("[EVENTS] action=register clients=%d", len(h.clients))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("[EVENTS] action=unregister clients=%d", len(h.clients))
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			data, err := json.Marshal(e)
			if err != nil {
				log.Printf("[EVENTS] action=marshal seq=%d err=%v", e.Seq, err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// slow reader; it can resync with ?since=
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish assigns the next sequence number, folds the event into the reducer and
// broadcasts it. Events the reducer considers stale are not broadcast.
func (h *Hub) Publish(table, op string, id, revision int64, data any) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			log.Printf("[EVENTS] action=publish table=%s id=%d err=%v", table, id, err)
			return
		}
		raw = b
	}
	e := ChangeEvent{
		Seq:      h.seq.Add(1),
		Table:    table,
		Op:       op,
		ID:       id,
		Revision: revision,
		Data:     raw,
		At:       h.now(),
	}
	if !h.reducer.Apply(e) {
		return
	}
	select {
	case h.broadcast <- e:
	case <-h.done:
	}
}

// Since exposes the reduced state for catch-up.
func (h *Hub) Since(since int64) []ChangeEvent {
	return h.reducer.Since(since)
}

// Seq returns the last assigned sequence number.
func (h *Hub) Seq() int64 {
	return h.seq.Load()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve replays the state changed after since to conn, then streams live events
// until the connection closes.
func (h *Hub) Serve(conn *websocket.Conn, since int64) {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	// registered before the replay so events published meanwhile are queued
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	for _, e := range h.Since(since) {
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.leave(c)
			conn.Close()
			return
		}
	}

	go c.writePump()
	c.readPump()
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// readPump only handles control frames; the feed is one-way.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
