// Package influxdb provides InfluxDB connectivity for the gateway fleet
// service.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched writes and health monitoring. Every gateway audit
// entry is written as a "gateway_audit" point tagged with the gateway id
// and action, giving a time series of fleet activity.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteAuditEvent(gatewayID, "DEVICE_ATTACHED", entryID, time.Now())
//
// # Error Handling
//
// Writes are non-blocking; batch errors are delivered to the SetOnError
// callback. Connection and health check errors are returned directly.
package influxdb
