package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedMessage is one frame on the live feed: the owner's complete current
// log list, newest first. The feed never sends deltas.
type feedMessage struct {
	Owner string `json:"owner"`
	Logs  any    `json:"logs"`
}

// handleLogFeed upgrades to WebSocket and streams full-state snapshots of
// one owner's logs. The first frame is the current state; every committed
// mutation for the owner produces another frame.
func (s *Server) handleLogFeed(c *gin.Context) {
	ownerID := c.Query("owner")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn(c.Request.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	// Subscribe before the initial query so no mutation between the two is
	// lost; a duplicate initial snapshot is harmless (snapshots are total).
	snapshots, cancel := s.hub.Subscribe(ownerID)
	defer cancel()

	initial, err := s.logs.Snapshot(c.Request.Context(), ownerID)
	if err != nil {
		s.logger.Error(c.Request.Context(), "initial snapshot failed", "owner", ownerID, "error", err.Error())
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot failed"), closeDeadline())
		return
	}

	if err := conn.WriteJSON(feedMessage{Owner: ownerID, Logs: initial}); err != nil {
		return
	}

	// Read pump, detects client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Write pump, forwards hub snapshots as JSON.
	for {
		select {
		case snapshot, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(feedMessage{Owner: ownerID, Logs: snapshot}); err != nil {
				s.logger.Warn(c.Request.Context(), "websocket write failed", "error", err.Error())
				return
			}
		case <-done:
			return
		}
	}
}
