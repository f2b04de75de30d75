package wsnotify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocketManager struct {
	clients map[*websocket.Conn]bool
	lock    sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func Upgrader() *websocket.Upgrader {
	return &upgrader
}

var Manager = &WebSocketManager{
	clients: make(map[*websocket.Conn]bool),
}

func (m *WebSocketManager) AddClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients[conn] = true
}

func (m *WebSocketManager) RemoveClient(conn *websocket.Conn) {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.clients, conn)
}

func (m *WebSocketManager) Broadcast(event interface{}) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	for client := range m.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteJSON(event); err != nil {
			client.Close()
			go m.RemoveClient(client)
		}
	}
}

type MessagePayload struct {
	CustomerID int    `json:"customerId"`
	Phone      string `json:"phone"`
	Text       string `json:"text"`
	Direction  string `json:"direction"`
	Timestamp  string `json:"timestamp"`
}

type MessageEvent struct {
	Type    string         `json:"type"`
	Payload MessagePayload `json:"payload"`
}

type ContactPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
}

type ContactEvent struct {
	Type    string         `json:"type"`
	Payload ContactPayload `json:"payload"`
}

func SendMessageEvent(customerID int, phone string, text string, direction string, at time.Time) {
	event := MessageEvent{
		Type: "message",
		Payload: MessagePayload{
			CustomerID: customerID,
			Phone:      phone,
			Text:       text,
			Direction:  direction,
			Timestamp:  at.UTC().Format(time.RFC3339Nano),
		},
	}
	Manager.Broadcast(event)
}

func SendContactEvent(id string, name string, phone string, source string) {
	event := ContactEvent{
		Type: "contact",
		Payload: ContactPayload{
			ID:     id,
			Name:   name,
			Phone:  phone,
			Source: source,
		},
	}
	Manager.Broadcast(event)
}
