// Package mq is the request/reply and event contract between the gateway and
// the workers, carried over Redis pub/sub.
//
// A request is published on the channel named after its pattern and the
// reply comes back on "<pattern>.reply", matched by correlation id. Events
// use the same envelope without an id and get no reply.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrTimeout   = errors.New("mq: no reply before deadline")
	ErrClosed    = errors.New("mq: subscription closed")
	ErrNoHandler = errors.New("mq: no handler for pattern")
)

// Sender performs a request and decodes the reply into out.
type Sender interface {
	Send(ctx context.Context, pattern string, payload, out any) error
}

// Publisher emits a fire-and-forget event.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

type envelope struct {
	ID      string          `json:"id,omitempty"`
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

type reply struct {
	ID         string          `json:"id"`
	Response   json.RawMessage `json:"response,omitempty"`
	Err        string          `json:"err,omitempty"`
	IsDisposed bool            `json:"isDisposed"`
}

// RemoteError is a failure reported by the handler on the other side.
type RemoteError struct {
	Pattern string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("mq: %s: %s", e.Pattern, e.Message)
}

func ReplyChannel(pattern string) string {
	return pattern + ".reply"
}
