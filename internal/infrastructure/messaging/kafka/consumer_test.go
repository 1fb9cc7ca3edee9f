package kafka

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	pkgerrors "github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// fakeReader serves a fixed message sequence, then blocks until the
// context is cancelled.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, io.EOF
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

func envelopeMessage(t *testing.T, topic string, payload interface{}) kafka.Message {
	t.Helper()
	env, err := NewEnvelope(TopicCaseIngested, "test", payload)
	require.NoError(t, err)
	value, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Topic: topic, Value: value}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestConsumerDispatchesToHandler(t *testing.T) {
	topic := "caselaw.pipeline.case.ingested"
	reader := &fakeReader{msgs: []kafka.Message{
		envelopeMessage(t, topic, CaseIngestedPayload{CaseID: "case-001", Category: "KORUPSI"}),
	}}
	c := NewConsumerFromReader(reader, nil)

	var mu sync.Mutex
	var got []string
	c.Handle(topic, func(_ context.Context, env *EventEnvelope) error {
		var p CaseIngestedPayload
		if err := env.DecodePayload(&p); err != nil {
			return err
		}
		mu.Lock()
		got = append(got, p.CaseID)
		mu.Unlock()
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	waitFor(t, func() bool { return c.Processed() == 1 })
	require.NoError(t, c.Close())

	mu.Lock()
	assert.Equal(t, []string{"case-001"}, got)
	mu.Unlock()
	assert.Equal(t, 1, reader.committedCount())
	assert.True(t, reader.closed)
}

func TestConsumerCommitsFailedEvents(t *testing.T) {
	topic := "caselaw.pipeline.case.ingested"
	reader := &fakeReader{msgs: []kafka.Message{
		{Topic: topic, Value: []byte("not json")},
		envelopeMessage(t, topic, CaseIngestedPayload{CaseID: "case-002"}),
	}}
	c := NewConsumerFromReader(reader, nil)
	c.Handle(topic, func(context.Context, *EventEnvelope) error { return nil })

	require.NoError(t, c.Start(context.Background()))
	waitFor(t, func() bool { return c.Processed() == 1 && c.Failed() == 1 })
	require.NoError(t, c.Close())

	// Both the malformed and the good message move the offset forward.
	assert.Equal(t, 2, reader.committedCount())
}

func TestConsumerStartTwice(t *testing.T) {
	c := NewConsumerFromReader(&fakeReader{}, nil)
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
	require.NoError(t, c.Close())
}

func TestNewConsumerValidation(t *testing.T) {
	_, err := NewConsumer(config.KafkaConfig{}, ConsumerGroupArchiver, []string{TopicCaseIngested}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))

	cfg := config.KafkaConfig{Brokers: []string{"localhost:9092"}}
	_, err = NewConsumer(cfg, "", []string{TopicCaseIngested}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))

	_, err = NewConsumer(cfg, ConsumerGroupArchiver, nil, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))
}
