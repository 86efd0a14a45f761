package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/elihudev/elihudroom/internal/app/models"
	"github.com/elihudev/elihudroom/internal/pkg/feed"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients do not send application messages; anything beyond control
	// frames is noise
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, in production you should restrict this
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// snapshotMessage is the wire envelope for one feed snapshot
type snapshotMessage struct {
	Type  string         `json:"type"`
	Posts []*models.Post `json:"posts"`
}

// Client bridges one websocket connection and one feed subscription
type Client struct {
	conn *websocket.Conn

	// Buffered channel of marshaled outbound snapshots
	send chan []byte

	sub *feed.Subscription

	userID  int64
	classID int64

	logger zerolog.Logger
}

// enqueueSnapshot marshals a feed snapshot and queues it for the write pump.
// Snapshots are complete feed states, so when a slow consumer fills the
// buffer the oldest pending snapshot is dropped in favor of the new one.
func (c *Client) enqueueSnapshot(posts []*models.Post) {
	if posts == nil {
		posts = []*models.Post{}
	}
	payload, err := json.Marshal(snapshotMessage{Type: "snapshot", Posts: posts})
	if err != nil {
		c.logger.Error().
			Err(err).
			Int64("classID", c.classID).
			Msg("Failed to marshal feed snapshot")
		return
	}

	for {
		select {
		case c.send <- payload:
			return
		default:
		}

		select {
		case <-c.send:
		default:
		}
	}
}

// readPump drains the connection until the peer goes away. Incoming frames
// carry no meaning; the pump exists to notice disconnects and answer pings.
func (c *Client) readPump() {
	defer func() {
		c.sub.Unsubscribe()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info().
					Int64("userID", c.userID).
					Int64("classID", c.classID).
					Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().
					Err(err).
					Int64("userID", c.userID).
					Int64("classID", c.classID).
					Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().
					Err(err).
					Int64("userID", c.userID).
					Int64("classID", c.classID).
					Msg("WebSocket read error")
			}
			return
		}
	}
}

// writePump pumps snapshots from the feed subscription to the websocket
// connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sub.Unsubscribe()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.sub.Done():
			// The subscription is gone, e.g. the class was deleted. Flush
			// anything still queued, then close the connection instead of
			// leaving it idle until a ping fails.
			for {
				select {
				case payload := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"))
					return
				}
			}
		}
	}
}
