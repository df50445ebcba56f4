package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisher_BreakerOpensOnUnreachableBroker(t *testing.T) {
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}, "contacts.lifecycle", BreakerSettings{
		MaxFailures: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	}, zap.NewNop())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := Event{ID: "1", Type: ContactCreated, Username: "alice", OccurredAt: time.Now()}
	require.Error(t, p.Publish(ctx, ev))

	err := p.Publish(context.Background(), ev)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "expected open breaker, got %v", err)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), Event{Type: ContactTrashed}))
	r.Err = errors.New("down")
	require.Error(t, r.Publish(context.Background(), Event{Type: ContactRestored}))
	assert.Equal(t, []string{ContactTrashed, ContactRestored}, r.Types())
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
	assert.NoError(t, p.Close())
}
