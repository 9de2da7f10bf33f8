// Package mqtt provides MQTT broker connectivity for mqtt-alert.
//
// This package manages:
//   - Connection to one broker with auto-reconnect (including the first connect)
//   - Topic subscriptions with wildcard support and SUBACK verification
//   - A single event stream per connection (connected, message, error, reconnecting)
//   - Connection state reporting
//
// # Architecture
//
// paho delivers messages in arrival order on its router goroutine. Client
// queues every callback in an unbounded FIFO and drains it into one channel,
// so the owning session processes events strictly in sequence and paho is
// never blocked behind it:
//
//	paho callbacks → FIFO → Client.Events() → session loop → dispatcher
//
// Subscriptions are not tracked or restored here. The consumer re-issues
// them whenever it sees EventConnected, which keeps the subscribed set a
// pure function of configuration.
//
// # Security Considerations
//
//   - TLS (cfg.TLS=true) is required for brokers reached over the internet,
//     such as The Things Network
//   - Credentials are validated against the broker ACL
//
// # Usage
//
//	client := mqtt.New(*cfg.MQTT.Local, cfg.MQTT.Reconnect)
//	if err := client.Start(ctx); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	for ev := range client.Events() {
//	    switch ev.Kind {
//	    case mqtt.EventConnected:
//	        client.Subscribe(ctx, "home/+/water", 0)
//	    case mqtt.EventMessage:
//	        log.Printf("%s = %s", ev.Topic, ev.Payload)
//	    }
//	}
package mqtt
