package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeEventWS upgrades the connection and streams event-feed messages for
// the creator named in the query string. The feed is public: event
// leaderboards carry no private data, so no token is required.
func UpgradeEventWS(hub *EventHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		creatorID, err := strconv.ParseUint(c.Query("creator_id"), 10, 64)
		if err != nil || creatorID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "creator_id required"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := hub.Subscribe(uint(creatorID))
		defer func() {
			client.Close()
			conn.Close()
		}()

		// Reader goroutine: drain control frames, detect close.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()
		for {
			select {
			case msg, ok := <-client.Send:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
