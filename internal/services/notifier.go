package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/prepstack-backend/internal/realtime"
	"github.com/yungbote/prepstack-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus; each instance's forwarder delivers
// the message to its local hub.
type RedisEmitter struct{ Bus bus.Bus }

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	_ = e.Bus.Publish(ctx, msg)
}

type ProgressNotifier interface {
	PointsAwarded(ctx context.Context, userID uuid.UUID, res *PointsResult)
	StreakUpdated(ctx context.Context, userID uuid.UUID, res *StreakResult)
	CounterIncremented(ctx context.Context, userID uuid.UUID, res *CounterResult)
}

type progressNotifier struct {
	emit SSEEmitter
}

func NewProgressNotifier(emit SSEEmitter) ProgressNotifier {
	return &progressNotifier{emit: emit}
}

func (n *progressNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *progressNotifier) PointsAwarded(ctx context.Context, userID uuid.UUID, res *PointsResult) {
	n.send(ctx, userID, realtime.SSEEventPointsAwarded, res)
}

func (n *progressNotifier) StreakUpdated(ctx context.Context, userID uuid.UUID, res *StreakResult) {
	n.send(ctx, userID, realtime.SSEEventStreakUpdated, res)
}

func (n *progressNotifier) CounterIncremented(ctx context.Context, userID uuid.UUID, res *CounterResult) {
	n.send(ctx, userID, realtime.SSEEventCounterIncremented, res)
}
