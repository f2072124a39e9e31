package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewClient(rdb *redis.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{rdb: rdb, timeout: timeout}
}

func (c *Client) Send(ctx context.Context, pattern string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mq: marshal %s payload: %w", pattern, err)
	}
	id := uuid.NewString()
	msg, err := json.Marshal(envelope{ID: id, Pattern: pattern, Data: data})
	if err != nil {
		return fmt.Errorf("mq: marshal %s envelope: %w", pattern, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Subscribe before publishing so the reply cannot be missed.
	sub := c.rdb.Subscribe(ctx, ReplyChannel(pattern))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return c.wrapCtxErr(ctx, pattern, fmt.Errorf("mq: subscribe %s: %w", ReplyChannel(pattern), err))
	}
	replies := sub.Channel()

	if err := c.rdb.Publish(ctx, pattern, msg).Err(); err != nil {
		return c.wrapCtxErr(ctx, pattern, fmt.Errorf("mq: publish %s: %w", pattern, err))
	}

	for {
		select {
		case <-ctx.Done():
			return c.wrapCtxErr(ctx, pattern, ctx.Err())
		case m, ok := <-replies:
			if !ok {
				return ErrClosed
			}
			var r reply
			if err := json.Unmarshal([]byte(m.Payload), &r); err != nil || r.ID != id {
				continue
			}
			if r.Err != "" {
				return &RemoteError{Pattern: pattern, Message: r.Err}
			}
			if out == nil || len(r.Response) == 0 {
				return nil
			}
			if err := json.Unmarshal(r.Response, out); err != nil {
				return fmt.Errorf("mq: decode %s reply: %w", pattern, err)
			}
			return nil
		}
	}
}

func (c *Client) Publish(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mq: marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(envelope{Pattern: event, Data: data})
	if err != nil {
		return fmt.Errorf("mq: marshal %s envelope: %w", event, err)
	}
	if err := c.rdb.Publish(ctx, event, msg).Err(); err != nil {
		return fmt.Errorf("mq: publish %s: %w", event, err)
	}
	return nil
}

func (c *Client) wrapCtxErr(ctx context.Context, pattern string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, pattern)
	}
	return err
}
