package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is the root of every topic when none is configured.
const DefaultTopicPrefix = "gatewayfleet"

// Topics builds the service's MQTT topics under a common prefix.
// Using these helpers keeps topic naming consistent across publishers
// and subscribers:
//
//	topics := mqtt.NewTopics("gatewayfleet")
//	topics.GatewayEvent("3f0c...", "device_attached")
//	// Returns: "gatewayfleet/gateway/3f0c.../device_attached"
type Topics struct {
	Prefix string
}

// NewTopics returns topic builders rooted at prefix, or DefaultTopicPrefix
// when prefix is empty. Trailing slashes are dropped.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// GatewayEvent returns the topic for one audit action on a gateway.
// The action is lower-cased.
//
// Example: gatewayfleet/gateway/{gatewayID}/created
func (t Topics) GatewayEvent(gatewayID, action string) string {
	return fmt.Sprintf("%s/gateway/%s/%s", t.prefix(), gatewayID, strings.ToLower(action))
}

// SystemStatus returns the service's online/offline status topic.
//
// Example: gatewayfleet/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.prefix())
}

// AllGatewayEvents returns a pattern matching every gateway event.
//
// Pattern: gatewayfleet/gateway/+/+
func (t Topics) AllGatewayEvents() string {
	return fmt.Sprintf("%s/gateway/+/+", t.prefix())
}

// AllTopics returns a pattern matching every topic under the prefix.
//
// Pattern: gatewayfleet/#
func (t Topics) AllTopics() string {
	return fmt.Sprintf("%s/#", t.prefix())
}
