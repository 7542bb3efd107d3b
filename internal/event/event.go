package event

type Type string

const (
	TypeItemCreated Type = "item.created"
	TypeItemUpdated Type = "item.updated"
	TypeItemDeleted Type = "item.deleted"
	TypePush        Type = "push"
)

// Toast is what the dashboard shows for an event.
type Toast struct {
	Level    string `json:"level"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
	ItemID   int64  `json:"item_id,omitempty"`
}

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Toast     Toast  `json:"toast"`
	Timestamp string `json:"timestamp"`
	// SessionID limits delivery to one browser session; empty means everyone.
	SessionID string `json:"-"`
	// Origin is the session that caused the event. It already got a flash toast.
	Origin string `json:"-"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
