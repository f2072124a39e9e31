package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/doc_platform/pkg/events"
	"github.com/Skotchmaster/doc_platform/pkg/ingestion"
	"github.com/Skotchmaster/doc_platform/services/ingestion/internal/testutil"
)

type fakePublisher struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, _ string, ev any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, ev.(events.Event))
	return nil
}

func newService(t *testing.T, outcome ingestion.Status) (*IngestionService, *fakePublisher) {
	t.Helper()

	pub := &fakePublisher{}
	return &IngestionService{
		Repo:    testutil.NewRepo(t),
		Events:  pub,
		Delay:   func() time.Duration { return 0 },
		Outcome: func(time.Duration) ingestion.Status { return outcome },
	}, pub
}

func TestAdd_ProcessesInBackground(t *testing.T) {
	t.Parallel()

	svc, pub := newService(t, ingestion.StatusSuccess)
	ctx := context.Background()

	in, err := svc.Add(ctx, ctx, ingestion.AddRequest{UserID: 3, DocumentID: 11})
	require.NoError(t, err)
	assert.Equal(t, ingestion.StatusPending, in.Status)

	svc.Wait()

	got, err := svc.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, ingestion.StatusSuccess, got.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TopicIngestions, pub.topics[0])
	assert.Equal(t, ingestion.EventProcessed, pub.events[0].Type)
	rec, ok := pub.events[0].Data.(ingestion.Record)
	require.True(t, ok)
	assert.Equal(t, ingestion.StatusSuccess, rec.Status)
}

func TestAdd_FailedOutcome(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, ingestion.StatusFailed)
	ctx := context.Background()

	in, err := svc.Add(ctx, ctx, ingestion.AddRequest{UserID: 1, DocumentID: 2})
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, ingestion.StatusFailed, got.Status)
}

func TestAdd_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, ingestion.StatusSuccess)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ingestion.AddRequest
	}{
		{name: "missing user", req: ingestion.AddRequest{DocumentID: 1}},
		{name: "missing document", req: ingestion.AddRequest{UserID: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAdd_DuplicateDocument(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, ingestion.StatusSuccess)
	ctx := context.Background()

	_, err := svc.Add(ctx, ctx, ingestion.AddRequest{UserID: 1, DocumentID: 4})
	require.NoError(t, err)
	_, err = svc.Add(ctx, ctx, ingestion.AddRequest{UserID: 2, DocumentID: 4})
	assert.ErrorIs(t, err, ErrConflict)
	svc.Wait()
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, ingestion.StatusSuccess)
	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcess_StopsOnCancel(t *testing.T) {
	t.Parallel()

	svc, pub := newService(t, ingestion.StatusSuccess)
	svc.Delay = func() time.Duration { return time.Hour }

	ctx := context.Background()
	bg, cancel := context.WithCancel(ctx)
	in, err := svc.Add(ctx, bg, ingestion.AddRequest{UserID: 1, DocumentID: 8})
	require.NoError(t, err)

	cancel()
	svc.Wait()

	got, err := svc.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, ingestion.StatusPending, got.Status)
	assert.Empty(t, pub.events)
}

func TestRandomDelay_WholeSecondsInRange(t *testing.T) {
	t.Parallel()

	d := RandomDelay(20*time.Second, 30*time.Second)
	for range 100 {
		v := d()
		assert.GreaterOrEqual(t, v, 20*time.Second)
		assert.LessOrEqual(t, v, 30*time.Second)
		assert.Zero(t, v%time.Second)
	}
	assert.Equal(t, time.Second, RandomDelay(time.Second, time.Second)())
}

func TestParityOutcome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ingestion.StatusSuccess, ParityOutcome(24*time.Second))
	assert.Equal(t, ingestion.StatusFailed, ParityOutcome(25*time.Second))
	assert.Equal(t, ingestion.StatusSuccess, ParityOutcome(0))
}
