package mqtt

import (
	"context"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Subscribe asks the broker for messages matching a topic filter and waits
// for the SUBACK.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "home/+/water" matches any room
//   - # (multi-level): "v3/app@ttn/devices/#" matches every device topic
//
// Matching messages are delivered through Events(). Subscriptions are not
// restored by the client; callers re-subscribe on every EventConnected.
//
// Parameters:
//   - ctx: Context for cancellation while waiting for the SUBACK
//   - topic: The topic filter to subscribe to
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//
// Returns:
//   - error: nil on success, or wrapped ErrSubscribeFailed describing the failure
func (c *Client) Subscribe(ctx context.Context, topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, nil)

	waitCtx, cancel := context.WithTimeout(ctx, defaultSubscribeTimeout)
	defer cancel()

	select {
	case <-token.Done():
	case <-waitCtx.Done():
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, waitCtx.Err())
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	if sub, ok := token.(*pahomqtt.SubscribeToken); ok {
		if code, found := sub.Result()[topic]; found && code >= subackFailure {
			return fmt.Errorf("%w: %s: broker returned code 0x%02x", ErrSubscribeFailed, topic, code)
		}
	}

	return nil
}
