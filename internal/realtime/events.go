package realtime

type SSEEvent string

const (
	SSEEventPointsAwarded      SSEEvent = "progress.points_awarded"
	SSEEventStreakUpdated      SSEEvent = "progress.streak_updated"
	SSEEventCounterIncremented SSEEvent = "progress.counter_incremented"
	SSEEventConnected          SSEEvent = "connected"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
