// Package mqtt provides the MQTT publisher used to fan fleet audit events
// out to other services.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// Topics are rooted at a configurable prefix (default "gatewayfleet"):
//
//	gatewayfleet/system/status                 retained online/offline status
//	gatewayfleet/gateway/{gatewayID}/{action}  one message per audit entry
//
// # Security Considerations
//
//   - Enable TLS for production deployments (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := client.Topics().GatewayEvent(gatewayID, "created")
//	client.PublishEvent(topic, payload)
package mqtt
