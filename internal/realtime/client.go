package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/platform/logger"
)

// SSEClient is one open stream. SessionID ties it to the login session so a
// reconnect from the same session can replace it.
type SSEClient struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionID   uuid.UUID
	ConnectedAt time.Time
	Channels    map[string]bool
	Outbound    chan SSEMessage
	done        chan struct{}
	once        sync.Once
	Logger      *logger.Logger
}

// UserChannel is the channel progress events for userID are published on.
func UserChannel(userID uuid.UUID) string { return userID.String() }
