// Package kafka publishes and consumes pipeline events. Each stage emits
// envelope-wrapped events; the archiving worker consumes case.ingested to
// keep the archive in sync with the case base.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

// Topic suffixes. The configured prefix (default "caselaw") is prepended
// by TopicName.
const (
	TopicCaseIngested   = "pipeline.case.ingested"
	TopicStageCompleted = "pipeline.stage.completed"
	TopicDocumentFailed = "pipeline.document.failed"
)

// DefaultTopicPrefix namespaces topics when config leaves it empty.
const DefaultTopicPrefix = "caselaw"

// ConsumerGroupArchiver is the worker's consumer group.
const ConsumerGroupArchiver = "caselaw-archiver"

// TopicName joins the prefix and topic suffix.
func TopicName(prefix, suffix string) string {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "." + suffix
}

// EventEnvelope is the wire format shared by all pipeline events.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// CaseIngestedPayload announces one case extracted into the case base.
type CaseIngestedPayload struct {
	CaseID       string `json:"case_id"`
	Category     string `json:"category"`
	StatuteCount int    `json:"statute_count"`
	FileName     string `json:"file_name"`
}

// StageCompletedPayload summarizes a finished pipeline stage run.
type StageCompletedPayload struct {
	Stage      string `json:"stage"`
	Processed  int    `json:"processed"`
	Failed     int    `json:"failed"`
	DurationMS int64  `json:"duration_ms"`
}

// DocumentFailedPayload records a ruling that could not be processed.
type DocumentFailedPayload struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// NewEnvelope wraps a payload in a fresh envelope.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		OccurredAt:    time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeValidation, "event has no payload")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode event payload")
	}
	return nil
}

// ParseEnvelope decodes a raw Kafka message value into an envelope.
func ParseEnvelope(value []byte) (*EventEnvelope, error) {
	if len(value) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "empty message value")
	}
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event envelope")
	}
	return &env, nil
}
