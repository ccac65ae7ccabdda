package script

import "github.com/jakecoffman/cp"

// NotificationKind identifies what changed.
type NotificationKind string

const (
	NotifyEntityMoved    NotificationKind = "entity_moved"
	NotifyPlayerMoved    NotificationKind = "player_moved"
	NotifyPlayerRotated  NotificationKind = "player_rotated"
	NotifyTileChanged    NotificationKind = "tile_changed"
	NotifyDaytimeChanged NotificationKind = "daytime_changed"
	NotifyCaptionChanged NotificationKind = "caption_changed"
)

// Notification tells the renderer about a state change made by the core.
type Notification struct {
	Kind NotificationKind
	Data any
}

type EntityMoved struct {
	PropID   int
	Position cp.Vector
}

type PlayerMoved struct {
	Position cp.Vector
}

type PlayerRotated struct {
	H, V float64
}

type TileChanged struct {
	X, Y      int
	Steppable bool
}

type DaytimeChanged struct {
	Daytime float64
}

type CaptionChanged struct {
	PropID  int
	Caption string
}

// Notifications is a simple FIFO queue.
type Notifications struct {
	items []Notification
}

// Push adds a notification.
func (q *Notifications) Push(kind NotificationKind, data any) {
	if q == nil {
		return
	}
	q.items = append(q.items, Notification{Kind: kind, Data: data})
}

// Drain returns all notifications and clears the queue.
func (q *Notifications) Drain() []Notification {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *Notifications) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
