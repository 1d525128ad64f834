// Package events adapts the fleet's outbound transports to audit.Sink.
//
// Every stored gateway audit entry is handed to each configured sink:
//
//	MQTTSink     gatewayfleet/gateway/{id}/{action}, JSON payload
//	KafkaSink    one message per entry, keyed by gateway id
//	InfluxSink   one gateway_audit point per entry
//	MetricsSink  gateway_audit_entries_total{action}
//
// Sinks never fail the caller. Delivery errors are logged and counted.
// Network sinks can be wrapped in Async so a slow broker does not hold up
// the request that produced the entry.
package events
