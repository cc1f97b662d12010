// Package hub pushes live capture events to connected dashboards over
// WebSocket. Gate devices post their readings to the ingest endpoint; the
// hub evaluates each reading against the temperature threshold and the
// mask value, broadcasts the event to every dashboard, and hands alerts
// to the notification fan-out.
package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/abhithakur89/Covid19TemperatureAPI/internal/domain"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/notify"
	"github.com/abhithakur89/Covid19TemperatureAPI/internal/settings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a separate origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DeviceEvent is one reading posted by a gate device.
type DeviceEvent struct {
	DeviceID    string  `json:"deviceId"`
	PersonUID   string  `json:"personUID"`
	PersonName  string  `json:"personName"`
	Mobile      string  `json:"mobile"`
	Temperature float64 `json:"temperature"`
	MaskValue   int     `json:"maskValue"`
	Timestamp   string  `json:"timestamp"`
	ImagePath   string  `json:"imagePath"`
}

// Broadcast is what dashboards receive for every event.
type Broadcast struct {
	DeviceID         string `json:"deviceId"`
	PersonName       string `json:"personName"`
	Visitor          bool   `json:"visitor"`
	Temperature      string `json:"temperature"`
	TemperatureAlert bool   `json:"temperatureAlert"`
	Mask             bool   `json:"mask"`
	MaskAlert        bool   `json:"maskAlert"`
	Timestamp        string `json:"timestamp"`
	ImagePath        string `json:"imagePath"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Notifier hands alert conditions to the notification fan-out. Satisfied
// by notify.Notifier.
type Notifier interface {
	Notify(ctx context.Context, event notify.Event) error
}

// Hub owns the dashboard connections and the event evaluation.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	settings   *settings.Resolver
	notifier   Notifier
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(settings *settings.Resolver, notifier Notifier, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		settings:   settings,
		notifier:   notifier,
		logger:     logger,
	}
}

// Run dispatches registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("Dashboard connected", zap.String("connection_id", c.id))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("Dashboard disconnected", zap.String("connection_id", c.id))

		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ServeWS upgrades a dashboard connection and starts its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// Publish evaluates a device event and broadcasts it; alert conditions are
// also handed to the notifier. Notification delivery runs detached so a
// slow SMS gateway cannot back-pressure the device.
func (h *Hub) Publish(ctx context.Context, event DeviceEvent) error {
	threshold, err := h.settings.TemperatureThreshold(ctx)
	if err != nil {
		return err
	}

	mask := event.MaskValue != domain.NoMaskValue
	temperatureAlert := event.Temperature > threshold

	out := Broadcast{
		DeviceID:         event.DeviceID,
		PersonName:       event.PersonName,
		Visitor:          event.PersonUID == domain.VisitorUID,
		Temperature:      domain.FormatTemperature(event.Temperature),
		TemperatureAlert: temperatureAlert,
		Mask:             mask,
		MaskAlert:        !mask,
		Timestamp:        event.Timestamp,
		ImagePath:        event.ImagePath,
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return err
	}
	h.broadcast <- payload

	if temperatureAlert {
		h.dispatchAlert(notify.Event{
			DeviceID:    event.DeviceID,
			PersonName:  event.PersonName,
			Temperature: out.Temperature,
			Timestamp:   event.Timestamp,
		})
	}
	if !mask {
		h.dispatchAlert(notify.Event{
			DeviceID:   event.DeviceID,
			PersonName: event.PersonName,
			Timestamp:  event.Timestamp,
		})
	}
	return nil
}

func (h *Hub) dispatchAlert(event notify.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.notifier.Notify(ctx, event); err != nil {
			h.logger.Error("Alert notification failed",
				zap.String("device_id", event.DeviceID),
				zap.Error(err),
			)
		}
	}()
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Dashboards only listen; the read loop exists to notice the close.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.String("connection_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
