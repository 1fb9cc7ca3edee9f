package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeConflict, "producer closed")

// WriterInterface abstracts kafka.Writer so tests can substitute a fake.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes pipeline events. Keys are the case or stage identity
// so related events land on one partition.
type Producer struct {
	writer WriterInterface
	prefix string
	source string
	logger logging.Logger

	closed atomic.Bool
	sent   atomic.Int64
	failed atomic.Int64
}

// NewProducer builds a producer on cfg.Brokers.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka.brokers")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	retries := cfg.ProducerRetries
	if retries <= 0 {
		retries = 3
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		MaxAttempts:            retries + 1,
		BatchSize:              batchSize,
		BatchTimeout:           100 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}

	return &Producer{
		writer: writer,
		prefix: cfg.TopicPrefix,
		source: cfg.ClientID,
		logger: log.Named("kafka.producer"),
	}, nil
}

// NewProducerFromWriter wraps an existing writer. Used by tests.
func NewProducerFromWriter(w WriterInterface, prefix, source string, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, prefix: prefix, source: source, logger: log.Named("kafka.producer")}
}

// Publish wraps payload in an envelope and writes it to the prefixed topic.
func (p *Producer) Publish(ctx context.Context, topicSuffix, key string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	env, err := NewEnvelope(topicSuffix, p.source, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}

	topic := TopicName(p.prefix, topicSuffix)
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish event")
	}

	p.sent.Add(1)
	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("key", key))
	return nil
}

// CaseIngested publishes a case.ingested event keyed by case id.
func (p *Producer) CaseIngested(ctx context.Context, payload CaseIngestedPayload) error {
	return p.Publish(ctx, TopicCaseIngested, payload.CaseID, payload)
}

// StageCompleted publishes a stage.completed event keyed by stage name.
func (p *Producer) StageCompleted(ctx context.Context, payload StageCompletedPayload) error {
	return p.Publish(ctx, TopicStageCompleted, payload.Stage, payload)
}

// DocumentFailed publishes a document.failed event keyed by file name.
func (p *Producer) DocumentFailed(ctx context.Context, payload DocumentFailedPayload) error {
	return p.Publish(ctx, TopicDocumentFailed, payload.FileName, payload)
}

// Sent returns the count of successfully published events.
func (p *Producer) Sent() int64 { return p.sent.Load() }

// Close flushes and closes the underlying writer. Idempotent.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}
