package service

import (
	"encoding/json"
	"log"
	"sync"

	"footix-backend/internal/model"

	"github.com/gofiber/contrib/websocket"
)

type WSClient struct {
	Conn     *websocket.Conn
	ClubID   string
	ClubName string
	Send     chan []byte

	mu        sync.Mutex
	auctions  map[string]bool
	closeOnce sync.Once
}

func NewWSClient(conn *websocket.Conn, clubID, clubName string) *WSClient {
	return &WSClient{
		Conn:     conn,
		ClubID:   clubID,
		ClubName: clubName,
		Send:     make(chan []byte, 256),
		auctions: make(map[string]bool),
	}
}

// SetSubscriptions replaces the client's watched auction set. Called from
// the connection's reader loop while the hub fans out concurrently.
func (c *WSClient) SetSubscriptions(auctionIDs []string) {
	next := make(map[string]bool, len(auctionIDs))
	for _, id := range auctionIDs {
		next[id] = true
	}
	c.mu.Lock()
	c.auctions = next
	c.mu.Unlock()
}

func (c *WSClient) Subscribed(auctionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.auctions[auctionID]
}

// closeSend is idempotent; hub eviction and the connection's own unregister
// can race.
func (c *WSClient) closeSend() {
	c.closeOnce.Do(func() { close(c.Send) })
}

// WSHub fans auction events out to connected clients. Delivery is
// best-effort: a client whose send buffer is full misses the event and
// recovers by re-fetching the auction snapshot.
type WSHub struct {
	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan []byte
	mu         sync.RWMutex
	done       chan struct{}
}

func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("WS: %s connected (total: %d)", client.ClubName, total)

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()
			client.closeSend()
			log.Printf("WS: %s disconnected (total: %d)", client.ClubName, total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Evict without closing Send: the connection's reader
					// loop may still be writing pongs into it. Unregister
					// owns the close.
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			return
		}
	}
}

func (h *WSHub) Shutdown() {
	close(h.done)
}

func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}

// Broadcast pushes an event to every connected client.
func (h *WSHub) Broadcast(event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.broadcast <- data
}

// BroadcastToAuction pushes an event to clients watching one auction.
// Slow clients are skipped, not waited on.
func (h *WSHub) BroadcastToAuction(auctionID string, event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.Subscribed(auctionID) {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *WSHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
