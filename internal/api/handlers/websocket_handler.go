package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/gocomet/carpool/pkg/logger"
	"github.com/gocomet/carpool/pkg/websocket"
)

// Upgrader upgrades HTTP connections to websockets
type Upgrader = gorilla.Upgrader

// NewUpgrader builds an upgrader. An empty origin list accepts any origin.
func NewUpgrader(readBuffer, writeBuffer int, allowedOrigins []string) Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return gorilla.Upgrader{
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
		CheckOrigin: func(r *http.Request) bool {
			return len(allowed) == 0 || allowed[r.Header.Get("Origin")]
		},
	}
}

// HandleWebSocket handles GET /v1/ws. The caller is identified by the auth
// middleware; ride subscriptions are managed over the socket.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	userID, ok := h.actor(c)
	if !ok {
		return
	}

	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, userID.String(), h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
