package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultDialTimeout  = 5 * time.Second
)

// messageWriter is the subset of *kafkago.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes messages to a single topic.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Producer struct {
	writer  messageWriter
	topic   string
	brokers []string
	timeout time.Duration

	closed bool
	mu     sync.RWMutex
}

// Connect creates a producer for cfg.Topic.
//
// kafka-go connects lazily, so Connect does not contact the brokers;
// use HealthCheck to verify reachability.
func Connect(cfg config.KafkaConfig) (*Producer, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
	}

	return newProducer(writer, cfg), nil
}

func newProducer(w messageWriter, cfg config.KafkaConfig) *Producer {
	timeout := time.Duration(cfg.WriteTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Producer{
		writer:  w,
		topic:   cfg.Topic,
		brokers: cfg.Brokers,
		timeout: timeout,
	}
}

// Topic returns the topic messages are written to.
func (p *Producer) Topic() string {
	return p.topic
}

// Publish writes one message and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// HealthCheck dials the first reachable broker.
func (p *Producer) HealthCheck(ctx context.Context) error {
	dialer := &kafkago.Dialer{Timeout: defaultDialTimeout}

	var lastErr error
	for _, broker := range p.brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}
	if lastErr == nil {
		return ErrNoBrokers
	}
	return fmt.Errorf("kafka health check: %w", lastErr)
}

// Close flushes pending messages and releases the writer.
// Calling Close more than once is safe.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("closing kafka writer: %w", err)
	}
	return nil
}
