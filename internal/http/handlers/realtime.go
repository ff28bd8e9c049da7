package handlers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/http/response"
	"github.com/yungbote/prepstack-backend/internal/observability"
	"github.com/yungbote/prepstack-backend/internal/platform/apierr"
	"github.com/yungbote/prepstack-backend/internal/platform/ctxutil"
	"github.com/yungbote/prepstack-backend/internal/platform/logger"
	"github.com/yungbote/prepstack-backend/internal/realtime"
	"github.com/yungbote/prepstack-backend/internal/services"
)

type RealtimeHandler struct {
	Log     *logger.Logger
	Hub     *realtime.SSEHub
	Metrics *observability.Metrics

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Hub:     hub,
		Metrics: metrics,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /sse/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	if id == nil || id.UserID == uuid.Nil {
		response.RespondAPIError(c, apierr.Unauthenticated(services.ErrUnauthenticated))
		return
	}

	client := h.Hub.NewSSEClient(id.UserID, id.SessionID)
	sessionID := client.SessionID
	channel := realtime.UserChannel(id.UserID)

	h.mu.Lock()
	// A reconnect from the same session replaces the old stream.
	if existing, ok := h.clients[sessionID]; ok {
		h.Hub.CloseClient(existing)
	}
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.Hub.AddChannel(client, channel)
	client.Outbound <- realtime.SSEMessage{
		Channel: channel,
		Event:   realtime.SSEEventConnected,
		Data:    gin.H{"client_id": client.ID},
	}
	h.Metrics.SSEClientConnected()
	h.Log.Debug("SSE stream open", "user_id", id.UserID.String(), "client_id", client.ID)

	h.Hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.Hub.CloseClient(client)
	h.Metrics.SSEClientDisconnected()
	h.Log.Debug("SSE stream closed", "client_id", client.ID, "duration_ms", time.Since(client.ConnectedAt).Milliseconds())
}

// Connected reports how many sessions hold an open stream on this instance.
func (h *RealtimeHandler) Connected() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
