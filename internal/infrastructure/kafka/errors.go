package kafka

import "errors"

var (
	// ErrDisabled indicates the Kafka producer is disabled in config.
	ErrDisabled = errors.New("kafka: disabled in configuration")

	// ErrNoBrokers is returned when no broker addresses are configured.
	ErrNoBrokers = errors.New("kafka: no brokers configured")

	// ErrPublishFailed wraps write failures.
	ErrPublishFailed = errors.New("kafka: publish failed")

	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("kafka: producer closed")
)
