package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrPublisherClosed = errors.New("publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues envelopes in memory and writes them from a single goroutine,
// so request handlers never wait on the broker.
type KafkaPublisher struct {
	producer string
	w        messageWriter
	log      *slog.Logger

	inbox   chan kafka.Message
	done    chan struct{}
	started sync.Once
	mu      sync.RWMutex
	closed  bool
}

func NewKafkaPublisher(brokers []string, producer string, buf int, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newKafkaPublisher(w, producer, buf, log)
}

func newKafkaPublisher(w messageWriter, producer string, buf int, log *slog.Logger) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	return &KafkaPublisher{
		producer: producer,
		w:        w,
		log:      log.With("component", "kafka_publisher"),
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
	}
}

// Start launches the writer loop. Calling it more than once is a no-op.
func (p *KafkaPublisher) Start() {
	p.started.Do(func() {
		go p.loop()
	})
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)
	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.w.WriteMessages(ctx, m); err != nil {
			p.log.Error("publish_failed", "topic", m.Topic, "key", string(m.Key), "error", err)
		}
		cancel()
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key, eventType string, payload any) error {
	env, err := NewEnvelope(p.producer, key, eventType, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes queued messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	// drains whatever is still queued when Start was never called
	p.Start()
	<-p.done
	return p.w.Close()
}
