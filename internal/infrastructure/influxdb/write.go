package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementSession      = "mqtt_session"
	measurementNotification = "notification"
)

// RecordSessionEvent writes one broker session lifecycle event
// ("connected", "connection_lost", "subscribed").
func (c *Client) RecordSessionEvent(broker, event string) {
	if !c.active() {
		return
	}

	point := write.NewPoint(
		measurementSession,
		map[string]string{
			"broker": broker,
			"event":  event,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writes.WritePoint(point)
}

// RecordNotification writes the outcome of one notification attempt.
//
// Parameters:
//   - broker: Broker identity the triggering message arrived on
//   - kind: Sensor kind (flood, mailbox, appliance_done)
//   - topic: Topic of the triggering message
//   - delivered: Whether the sink accepted the message
func (c *Client) RecordNotification(broker, kind, topic string, delivered bool) {
	if !c.active() {
		return
	}

	point := write.NewPoint(
		measurementNotification,
		map[string]string{
			"broker": broker,
			"kind":   kind,
		},
		map[string]interface{}{
			"topic":     topic,
			"delivered": delivered,
		},
		time.Now(),
	)

	c.writes.WritePoint(point)
}
