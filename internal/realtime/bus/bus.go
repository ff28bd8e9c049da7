package bus

import (
	"context"

	"github.com/yungbote/prepstack-backend/internal/realtime"
)

// Bus carries SSE messages between API instances so a mutation served by one
// instance reaches the user's stream on another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
