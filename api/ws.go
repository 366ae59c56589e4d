package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/snake-in-browser/driver"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Snapshots queued per client before the oldest is dropped.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkSameOrigin,
}

// checkSameOrigin only lets the page served by this process connect.
// Clients that send no Origin header, such as tools, are allowed.
func checkSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ControlMessage is a command sent by the page over the socket.
type ControlMessage struct {
	Type      string `json:"type"` // "key", "direction", "pause", "reset"
	Key       string `json:"key,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// client couples one socket with one driver subscription.
type client struct {
	conn    *websocket.Conn
	driver  *driver.Driver
	updates <-chan structs.Snapshot
	cancel  func()
}

// WebSocketHandler streams every snapshot to the page and applies the
// control messages it sends back.
func WebSocketHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade failed: %v", err)
			return
		}
		updates, cancel := d.Subscribe(sendBuffer)
		cl := &client{conn: conn, driver: d, updates: updates, cancel: cancel}

		go cl.writePump(d.Snapshot())
		cl.readPump()
	}
}

// readPump applies control messages until the peer goes away.
func (c *client) readPump() {
	defer func() {
		c.cancel()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		var msg ControlMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("ws: bad control message: %v", err)
			continue
		}
		c.apply(msg)
	}
}

func (c *client) apply(msg ControlMessage) {
	switch msg.Type {
	case "key":
		c.driver.HandleKey(msg.Key)
	case "direction":
		dir, err := structs.ParseDirection(msg.Direction)
		if err != nil {
			log.Printf("ws: %v", err)
			return
		}
		c.driver.ChangeDirection(dir)
	case "pause":
		c.driver.TogglePause()
	case "reset":
		c.driver.Reset()
	default:
		log.Printf("ws: unknown control message type %q", msg.Type)
	}
}

// writePump sends the initial snapshot, then every update, plus pings.
func (c *client) writePump(initial structs.Snapshot) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	if err := c.write(initial); err != nil {
		return
	}
	for {
		select {
		case snap, ok := <-c.updates:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(snap); err != nil {
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

func (c *client) write(snap structs.Snapshot) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(snap)
}
