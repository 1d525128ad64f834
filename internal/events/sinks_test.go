package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/mqtt"
)

type published struct {
	topic   string
	payload []byte
}

type fakeMQTT struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakeMQTT) PublishEvent(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, payload})
	return nil
}

func (f *fakeMQTT) Topics() mqtt.Topics { return mqtt.NewTopics("fleet") }

type fakeProducer struct {
	mu   sync.Mutex
	keys []string
	vals [][]byte
	err  error
}

func (f *fakeProducer) Publish(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, string(key))
	f.vals = append(f.vals, value)
	return nil
}

type fakeWriter struct {
	gatewayID string
	action    string
	entryID   int64
	at        time.Time
}

func (f *fakeWriter) WriteAuditEvent(gatewayID, action string, entryID int64, at time.Time) {
	f.gatewayID, f.action, f.entryID, f.at = gatewayID, action, entryID, at
}

type counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCounter() *counter { return &counter{counts: map[string]int{}} }

func (c *counter) IncSinkFailure(sink string) { c.inc(sink) }
func (c *counter) IncAuditEntry(action string) { c.inc(action) }

func (c *counter) inc(k string) {
	c.mu.Lock()
	c.counts[k]++
	c.mu.Unlock()
}

func (c *counter) get(k string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[k]
}

func testEntry() audit.Entry {
	return audit.Entry{
		ID:        7,
		GatewayID: "6f1c2d7e-1111-4a4a-9b9b-222233334444",
		Action:    audit.ActionDeviceAttached,
		Details:   audit.Details{"deviceId": "d-1", "uid": float64(1001)},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMQTTSink_Publish(t *testing.T) {
	client := &fakeMQTT{}
	sink := NewMQTTSink(client, logging.Discard(), nil)
	e := testEntry()

	sink.Publish(context.Background(), e)

	if len(client.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.msgs))
	}
	wantTopic := "fleet/gateway/" + e.GatewayID + "/device_attached"
	if client.msgs[0].topic != wantTopic {
		t.Errorf("topic = %q, want %q", client.msgs[0].topic, wantTopic)
	}

	var got audit.Entry
	if err := json.Unmarshal(client.msgs[0].payload, &got); err != nil {
		t.Fatalf("payload is not an entry: %v", err)
	}
	if got.ID != e.ID || got.Action != e.Action || got.Details["deviceId"] != "d-1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestMQTTSink_FailureIsLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, config.LoggingConfig{Level: "info"}, "test")
	failures := newCounter()

	sink := NewMQTTSink(&fakeMQTT{err: mqtt.ErrNotConnected}, logger, failures)
	sink.Publish(context.Background(), testEntry())

	if failures.get("mqtt") != 1 {
		t.Errorf("mqtt failures = %d, want 1", failures.get("mqtt"))
	}
	if !strings.Contains(buf.String(), "audit event delivery failed") {
		t.Errorf("expected failure log, got %q", buf.String())
	}
}

func TestKafkaSink_Publish(t *testing.T) {
	producer := &fakeProducer{}
	sink := NewKafkaSink(producer, nil, nil)
	e := testEntry()

	sink.Publish(context.Background(), e)

	if len(producer.keys) != 1 || producer.keys[0] != e.GatewayID {
		t.Fatalf("keys = %v, want [%s]", producer.keys, e.GatewayID)
	}
	if !bytes.Contains(producer.vals[0], []byte(`"action":"DEVICE_ATTACHED"`)) {
		t.Errorf("value = %s", producer.vals[0])
	}
}

func TestKafkaSink_Failure(t *testing.T) {
	failures := newCounter()
	sink := NewKafkaSink(&fakeProducer{err: errors.New("broker down")}, nil, failures)

	sink.Publish(context.Background(), testEntry())

	if failures.get("kafka") != 1 {
		t.Errorf("kafka failures = %d, want 1", failures.get("kafka"))
	}
}

func TestInfluxSink_Publish(t *testing.T) {
	w := &fakeWriter{}
	e := testEntry()

	NewInfluxSink(w).Publish(context.Background(), e)

	if w.gatewayID != e.GatewayID || w.action != "DEVICE_ATTACHED" || w.entryID != 7 || !w.at.Equal(e.CreatedAt) {
		t.Errorf("wrote %+v", w)
	}
}

func TestMetricsSink_Publish(t *testing.T) {
	c := newCounter()
	sink := NewMetricsSink(c)

	sink.Publish(context.Background(), testEntry())
	sink.Publish(context.Background(), testEntry())

	if c.get("DEVICE_ATTACHED") != 2 {
		t.Errorf("DEVICE_ATTACHED = %d, want 2", c.get("DEVICE_ATTACHED"))
	}
}

func TestSinksSatisfyAuditSink(t *testing.T) {
	var _ audit.Sink = (*MQTTSink)(nil)
	var _ audit.Sink = (*KafkaSink)(nil)
	var _ audit.Sink = (*InfluxSink)(nil)
	var _ audit.Sink = (*MetricsSink)(nil)
	var _ audit.Sink = (*Async)(nil)
}
