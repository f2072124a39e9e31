package events

import "time"

// Event is the envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

func NewEvent(typ string, data any) Event {
	return Event{Type: typ, OccurredAt: time.Now().UTC(), Data: data}
}
