//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/testutil/containers"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisher_RoundTrip(t *testing.T) {
	kc := containers.NewKafkaContainer(t)
	const topic = "contacts.events.it"

	pub := NewKafkaPublisher([]string{kc.Broker}, topic, BreakerSettings{
		MaxFailures: 5,
		Interval:    time.Minute,
		Timeout:     time.Second,
	}, zap.NewNop())
	t.Cleanup(func() { _ = pub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	sent := Event{
		ID:         "ev-1",
		Type:       ContactMerged,
		Username:   "alice",
		ContactIDs: []string{"a", "b"},
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	// The topic is auto-created on first write; retry until the broker has it.
	require.Eventually(t, func() bool {
		return pub.Publish(ctx, sent) == nil
	}, 30*time.Second, 500*time.Millisecond)

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{kc.Broker},
		Topic:     topic,
		Partition: 0,
		MaxWait:   500 * time.Millisecond,
	})
	t.Cleanup(func() { _ = r.Close() })

	msg, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", string(msg.Key))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, ContactMerged, got.Type)
	assert.Equal(t, []string{"a", "b"}, got.ContactIDs)
}
