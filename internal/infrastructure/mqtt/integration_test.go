//go:build integration

package mqtt

import (
	"context"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Integration tests against a real broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

// waitFor reads events until one of the wanted kind arrives.
func waitFor(t *testing.T, client *Client, kind EventKind) Event {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-client.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

func TestIntegration_ConnectSubscribeReceive(t *testing.T) {
	cfg := testConfig()
	cfg.ClientID = "mqtt-alert-int-receive"

	client := New(cfg, testReconnect())
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Close()

	waitFor(t, client, EventConnected)

	if err := client.Subscribe(ctx, "mqtt-alert/int/+/water", 0); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pubOpts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg)).
		SetClientID("mqtt-alert-int-publisher")
	pub := pahomqtt.NewClient(pubOpts)
	if tok := pub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("publisher connect error = %v", tok.Error())
	}
	defer pub.Disconnect(100)

	if tok := pub.Publish("mqtt-alert/int/cellar/water", 0, false, "true"); tok.Wait() && tok.Error() != nil {
		t.Fatalf("publish error = %v", tok.Error())
	}

	ev := waitFor(t, client, EventMessage)
	if ev.Topic != "mqtt-alert/int/cellar/water" || string(ev.Payload) != "true" {
		t.Errorf("received %s=%s, want mqtt-alert/int/cellar/water=true", ev.Topic, ev.Payload)
	}
}

func TestIntegration_OverlappingFiltersDeliverOnce(t *testing.T) {
	cfg := testConfig()
	cfg.ClientID = "mqtt-alert-int-overlap"

	client := New(cfg, testReconnect())
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Close()

	waitFor(t, client, EventConnected)

	for _, f := range []string{"mqtt-alert/overlap/#", "mqtt-alert/overlap/washer"} {
		if err := client.Subscribe(ctx, f, 0); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", f, err)
		}
	}

	pub := pahomqtt.NewClient(pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg)).
		SetClientID("mqtt-alert-int-overlap-pub"))
	if tok := pub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("publisher connect error = %v", tok.Error())
	}
	defer pub.Disconnect(100)
	pub.Publish("mqtt-alert/overlap/washer", 0, false, "ProgramFinished").Wait()

	waitFor(t, client, EventMessage)

	// Brokers may legitimately deliver once per matching filter; the client
	// itself must not add duplicates on top of that.
	select {
	case ev := <-client.Events():
		t.Logf("second event %s (broker-side duplicate)", ev.Kind)
	case <-time.After(500 * time.Millisecond):
	}
}
