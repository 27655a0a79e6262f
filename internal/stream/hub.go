package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans out per-class decision events to connected websocket clients.
// Redis pub/sub carries events across instances; a nil redis client keeps
// the hub fully local.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	ClassID string
	Send    chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(classID string) *Client {
	client := &Client{
		ClassID: classID,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[classID] == nil {
		h.clients[classID] = map[*Client]struct{}{}
	}
	h.clients[classID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if classClients, ok := h.clients[client.ClassID]; ok {
		delete(classClients, client)
		if len(classClients) == 0 {
			delete(h.clients, client.ClassID)
		}
	}
	close(client.Send)
}

// Broadcast hands a payload to subscribers of the class. With redis
// configured, delivery goes through pub/sub only: the subscription loop
// receives this process's own publish back and serves local clients, so
// delivering here as well would double every event. Without redis the hub
// delivers directly. Slow clients are skipped.
func (h *Hub) Broadcast(classID string, payload []byte) {
	if h.redis == nil {
		h.deliver(classID, payload)
		return
	}

	err := h.redis.Publish(context.Background(), redisChannel(classID), payload).Err()
	if err != nil {
		log.Printf("redis publish error: %v", err)
		h.deliver(classID, payload)
	}
}

func (h *Hub) deliver(classID string, payload []byte) {
	h.mu.RLock()
	clients := h.clients[classID]
	h.mu.RUnlock()

	for client := range clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "attendance:*:decisions")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver(classIDFromChannel(msg.Channel), []byte(msg.Payload))
	}
}

func redisChannel(classID string) string {
	return "attendance:" + classID + ":decisions"
}

func classIDFromChannel(ch string) string {
	// attendance:{class}:decisions
	const prefix = "attendance:"
	const suffix = ":decisions"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
