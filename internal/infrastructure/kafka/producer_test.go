package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafkago.Message
	deadline bool
	err      error
	closes   int
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closes++
	return nil
}

func testConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Enabled: true,
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   "gatewayfleet.audit",
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.KafkaConfig)
		wantErr error
	}{
		{"enabled", func(*config.KafkaConfig) {}, nil},
		{"disabled", func(c *config.KafkaConfig) { c.Enabled = false }, ErrDisabled},
		{"no brokers", func(c *config.KafkaConfig) { c.Brokers = nil }, ErrNoBrokers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			p, err := Connect(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Connect() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				if p.Topic() != "gatewayfleet.audit" {
					t.Errorf("Topic() = %q", p.Topic())
				}
				p.Close()
			}
		})
	}
}

func TestNewProducer_DefaultTimeout(t *testing.T) {
	p := newProducer(&fakeWriter{}, testConfig())
	if p.timeout != defaultWriteTimeout {
		t.Errorf("timeout = %v, want %v", p.timeout, defaultWriteTimeout)
	}

	cfg := testConfig()
	cfg.WriteTimeout = 3
	if p := newProducer(&fakeWriter{}, cfg); p.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", p.timeout)
	}
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, testConfig())

	if err := p.Publish(context.Background(), []byte("gw-1"), []byte(`{"action":"CREATED"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(w.messages) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.messages))
	}
	msg := w.messages[0]
	if string(msg.Key) != "gw-1" || string(msg.Value) != `{"action":"CREATED"}` {
		t.Errorf("message = %s/%s", msg.Key, msg.Value)
	}
	if msg.Time.IsZero() {
		t.Error("message time should be set")
	}
	if !w.deadline {
		t.Error("write should run under a deadline")
	}
}

func TestPublish_WriterError(t *testing.T) {
	cause := errors.New("leader not available")
	p := newProducer(&fakeWriter{err: cause}, testConfig())

	err := p.Publish(context.Background(), nil, []byte("{}"))
	if !errors.Is(err, ErrPublishFailed) || !errors.Is(err, cause) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed wrapping cause", err)
	}
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, testConfig())

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if w.closes != 1 {
		t.Errorf("writer closed %d times, want 1", w.closes)
	}

	if err := p.Publish(context.Background(), nil, []byte("{}")); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close error = %v, want ErrClosed", err)
	}
}

func TestHealthCheck_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Brokers = []string{"127.0.0.1:1"}
	p := newProducer(&fakeWriter{}, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should fail for an unreachable broker")
	}
}
