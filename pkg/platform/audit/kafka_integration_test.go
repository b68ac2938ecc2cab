//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"tapcard/pkg/testutil/containers"
)

func TestKafkaPublisherEmit(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "tapcard.security-events.test"
	publisher, err := NewKafkaPublisher(ctx, []string{rp.Broker}, topic, logger)
	require.NoError(t, err)
	defer publisher.Close()

	event := SecurityEvent{
		Action:    EventLoginFailed,
		Subject:   "uid-1",
		RequestID: "req-1",
		Reason:    "invalid assertion",
		Severity:  SeverityWarning,
	}
	require.NoError(t, publisher.Emit(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	deadline, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(deadline)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "uid-1", string(records[0].Key))

	var got SecurityEvent
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, EventLoginFailed, got.Action)
	assert.Equal(t, "invalid assertion", got.Reason)
	assert.False(t, got.Timestamp.IsZero())
}

func TestKafkaPublisherCreatesTopicIdempotently(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	const topic = "tapcard.security-events.idempotent"
	first, err := NewKafkaPublisher(ctx, []string{rp.Broker}, topic, logger)
	require.NoError(t, err)
	first.Close()

	second, err := NewKafkaPublisher(ctx, []string{rp.Broker}, topic, logger)
	require.NoError(t, err)
	second.Close()
}
