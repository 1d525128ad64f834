// Package kafka provides the Kafka producer used to stream gateway audit
// entries to downstream consumers.
//
// It wraps segmentio/kafka-go's Writer. Messages are keyed by gateway id so
// every entry for one gateway lands on the same partition and keeps its order.
//
// # Usage
//
//	producer, err := kafka.Connect(cfg.Kafka)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer producer.Close()
//
//	err = producer.Publish(ctx, []byte(gatewayID), payload)
package kafka
