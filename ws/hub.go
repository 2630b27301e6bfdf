package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/podcastr/podcastr-backend/models"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[*websocket.Conn]*Client),
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[conn] = client

	// the HTTP handler owns the read loop
	go h.writePump(client)
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.Clients[conn]; ok {
		close(client.Send)
		delete(h.Clients, conn)
	}
}

func (h *Hub) Broadcast(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) GetStats() map[string]interface{} {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	return map[string]interface{}{
		"connected_clients": len(h.Clients),
	}
}

// PodcastPublishedEvent is pushed to connected listeners so open discovery
// pages can refresh without polling.
type PodcastPublishedEvent struct {
	Type         string `json:"type"`
	PodcastID    string `json:"podcast_id"`
	PodcastTitle string `json:"podcast_title"`
	Author       string `json:"author"`
}

func BroadcastPodcastPublished(p *models.Podcast) {
	event := PodcastPublishedEvent{
		Type:         "podcast_published",
		PodcastID:    p.ID.String(),
		PodcastTitle: p.PodcastTitle,
		Author:       p.Author,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(data)
}

func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
