package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	// MeasurementGatewayAudit records one point per gateway audit entry.
	MeasurementGatewayAudit = "gateway_audit"
)

// WriteAuditEvent records a gateway audit entry as a point.
//
// The gateway and action become tags so activity can be grouped per
// gateway or per action; the entry id is kept as a field.
// The write is non-blocking; data is batched and sent asynchronously.
func (c *Client) WriteAuditEvent(gatewayID, action string, entryID int64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(auditPoint(gatewayID, action, entryID, at))
}

func auditPoint(gatewayID, action string, entryID int64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementGatewayAudit,
		map[string]string{
			"gateway_id": gatewayID,
			"action":     action,
		},
		map[string]interface{}{
			"entry_id": entryID,
			"count":    1,
		},
		at,
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Example:
//
//	client.WritePoint("fleet_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"gateways": 42})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
