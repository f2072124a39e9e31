package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/doc_platform/pkg/logging"
)

// Handler serves one pattern. The returned value becomes the reply body;
// for events it is discarded.
type Handler func(ctx context.Context, data json.RawMessage) (any, error)

// Server dispatches incoming requests and events to registered handlers.
// Register every handler before calling Run; Run is called once.
type Server struct {
	rdb      *redis.Client
	handlers map[string]Handler
	ready    chan struct{}
	wg       sync.WaitGroup
}

func NewServer(rdb *redis.Client) *Server {
	return &Server{
		rdb:      rdb,
		handlers: make(map[string]Handler),
		ready:    make(chan struct{}),
	}
}

func (s *Server) Handle(pattern string, h Handler) {
	s.handlers[pattern] = h
}

// Ready is closed once every pattern is subscribed.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

func (s *Server) Run(ctx context.Context) error {
	if len(s.handlers) == 0 {
		return errors.New("mq: no handlers registered")
	}
	patterns := make([]string, 0, len(s.handlers))
	for p := range s.handlers {
		patterns = append(patterns, p)
	}

	sub := s.rdb.Subscribe(ctx, patterns...)
	defer sub.Close()
	for range patterns {
		if _, err := sub.Receive(ctx); err != nil {
			return fmt.Errorf("mq: subscribe: %w", err)
		}
	}
	close(s.ready)

	l := logging.FromContext(ctx).With("component", "mq_server")
	l.Info("mq_server_started", "patterns", patterns)

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return nil
		case m, ok := <-msgs:
			if !ok {
				s.wg.Wait()
				return ErrClosed
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.dispatch(ctx, m)
			}()
		}
	}
}

func (s *Server) dispatch(ctx context.Context, m *redis.Message) {
	l := logging.FromContext(ctx).With("pattern", m.Channel)

	var env envelope
	if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
		l.Warn("mq_bad_envelope", "error", err)
		return
	}

	h, ok := s.handlers[m.Channel]
	if !ok {
		s.reply(ctx, m.Channel, env.ID, nil, ErrNoHandler)
		return
	}

	hctx := logging.IntoContext(ctx, l.With("correlation_id", env.ID))
	resp, err := h(hctx, env.Data)
	if env.ID == "" {
		if err != nil {
			l.Error("mq_event_failed", "error", err)
		}
		return
	}
	s.reply(ctx, m.Channel, env.ID, resp, err)
}

func (s *Server) reply(ctx context.Context, pattern, id string, resp any, herr error) {
	if id == "" {
		return
	}
	l := logging.FromContext(ctx).With("pattern", pattern, "correlation_id", id)

	r := reply{ID: id, IsDisposed: true}
	if herr != nil {
		r.Err = herr.Error()
	} else if resp != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			r.Err = "cannot encode response"
			l.Error("mq_reply_encode_failed", "error", err)
		} else {
			r.Response = data
		}
	}

	raw, err := json.Marshal(r)
	if err != nil {
		l.Error("mq_reply_encode_failed", "error", err)
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.rdb.Publish(pctx, ReplyChannel(pattern), raw).Err(); err != nil {
		l.Error("mq_reply_failed", "error", err)
	}
}
