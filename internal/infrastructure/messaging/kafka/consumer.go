package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	"github.com/turtacn/CaseLaw-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

var ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")

// EnvelopeHandler processes one decoded event. A non-nil error marks the
// event failed; the message is still committed, delivery is at-least-once
// and handlers must be idempotent.
type EnvelopeHandler func(ctx context.Context, env *EventEnvelope) error

// ReaderInterface abstracts kafka.Reader so tests can substitute a fake.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads pipeline events for one consumer group and dispatches
// them to per-topic handlers.
type Consumer struct {
	reader ReaderInterface
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]EnvelopeHandler

	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processed atomic.Int64
	failed    atomic.Int64
}

// NewConsumer subscribes the group to the prefixed topics.
func NewConsumer(cfg config.KafkaConfig, groupID string, topicSuffixes []string, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka.brokers")
	}
	if groupID == "" {
		return nil, errors.InvalidParam("kafka consumer group id")
	}
	if len(topicSuffixes) == 0 {
		return nil, errors.InvalidParam("kafka consumer topics")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	topics := make([]string, len(topicSuffixes))
	for i, s := range topicSuffixes {
		topics[i] = TopicName(cfg.TopicPrefix, s)
	}

	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
		StartOffset: startOffset,
	})

	return &Consumer{
		reader:   reader,
		logger:   log.Named("kafka.consumer"),
		handlers: make(map[string]EnvelopeHandler),
	}, nil
}

// NewConsumerFromReader wraps an existing reader. Used by tests.
func NewConsumerFromReader(r ReaderInterface, log logging.Logger) *Consumer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Consumer{
		reader:   r,
		logger:   log.Named("kafka.consumer"),
		handlers: make(map[string]EnvelopeHandler),
	}
}

// Handle registers the handler for a full topic name.
func (c *Consumer) Handle(topic string, handler EnvelopeHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start launches the consume loop. Returns ErrAlreadyRunning when called
// twice without Close in between.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go c.consumeLoop(ctx)

	c.logger.Info("consumer started")
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch message failed", logging.Err(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.dispatch(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed",
				logging.String("topic", msg.Topic),
				logging.Err(err))
		}
	}
}

// dispatch decodes and handles one message. Failures are logged and the
// message is skipped; the archive tolerates gaps, re-runs repair them.
func (c *Consumer) dispatch(ctx context.Context, msg kafka.Message) {
	c.mu.RLock()
	handler, ok := c.handlers[msg.Topic]
	c.mu.RUnlock()
	if !ok {
		c.logger.Warn("no handler for topic", logging.String("topic", msg.Topic))
		return
	}

	env, err := ParseEnvelope(msg.Value)
	if err != nil {
		c.failed.Add(1)
		c.logger.Error("malformed event skipped",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return
	}

	if err := handler(ctx, env); err != nil {
		c.failed.Add(1)
		c.logger.Error("event handling failed",
			logging.String("topic", msg.Topic),
			logging.String("event_id", env.EventID),
			logging.Err(err))
		return
	}
	c.processed.Add(1)
}

// Processed returns the count of successfully handled events.
func (c *Consumer) Processed() int64 { return c.processed.Load() }

// Failed returns the count of events that were skipped after an error.
func (c *Consumer) Failed() int64 { return c.failed.Load() }

// Close stops the loop and releases the reader. Idempotent.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("consumer closed",
		logging.Int64("processed", c.processed.Load()),
		logging.Int64("failed", c.failed.Load()))
	return err
}
