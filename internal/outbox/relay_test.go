package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OutboxEvent), args.Error(1)
}

func (m *MockStore) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	args := m.Called(ctx, routingKey, body, headers)
	return args.Error(0)
}

func newEvent(orderID int64) model.OutboxEvent {
	payload, _ := json.Marshal(map[string]int64{"orderId": orderID})
	return model.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: orderID,
		EventType:   model.EventOrderCreated,
		Payload:     payload,
		CreatedAt:   time.Now(),
	}
}

func TestRelay_Tick(t *testing.T) {
	first, second := newEvent(1), newEvent(2)

	tests := []struct {
		name         string
		events       []model.OutboxEvent
		fetchErr     error
		failPublish  map[uuid.UUID]bool
		markErr      error
		expectedSent int
		expectError  bool
	}{
		{name: "Publishes and marks every event", events: []model.OutboxEvent{first, second}, expectedSent: 2},
		{name: "Nothing pending", events: []model.OutboxEvent{}},
		{name: "Fetch failure", fetchErr: errors.New("db down"), expectError: true},
		{
			name:         "Failed publish stays pending",
			events:       []model.OutboxEvent{first, second},
			failPublish:  map[uuid.UUID]bool{first.ID: true},
			expectedSent: 1,
		},
		{name: "Mark failure stops the batch", events: []model.OutboxEvent{first, second}, markErr: errors.New("db down"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			publisher := new(MockPublisher)
			relay := NewRelay(store, publisher, time.Second, 10, zerolog.Nop())

			if tt.fetchErr != nil {
				store.On("FetchPending", mock.Anything, 10).Return(nil, tt.fetchErr)
			} else {
				store.On("FetchPending", mock.Anything, 10).Return(tt.events, nil)
			}

			for _, e := range tt.events {
				var pubErr error
				if tt.failPublish[e.ID] {
					pubErr = errors.New("channel closed")
				}
				publisher.On("Publish", mock.Anything, model.EventOrderCreated, []byte(e.Payload), mock.MatchedBy(func(h amqp.Table) bool {
					return h["x-outbox-id"] == e.ID.String()
				})).Return(pubErr).Maybe()
				if pubErr == nil {
					store.On("MarkSent", mock.Anything, e.ID).Return(tt.markErr).Maybe()
				}
			}

			sent, err := relay.tick(context.Background())

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedSent, sent)
			if len(tt.failPublish) > 0 {
				store.AssertNotCalled(t, "MarkSent", mock.Anything, first.ID)
				store.AssertCalled(t, "MarkSent", mock.Anything, second.ID)
			}
		})
	}
}

type countingStore struct {
	mu    sync.Mutex
	polls int
}

func (s *countingStore) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	return nil, nil
}

func (s *countingStore) MarkSent(ctx context.Context, id uuid.UUID) error { return nil }

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func TestRelay_RunStopsOnCancel(t *testing.T) {
	store := &countingStore{}
	relay := NewRelay(store, new(MockPublisher), 10*time.Millisecond, 5, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return store.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}
