package mqtt

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/eclipse/paho.mqtt.golang/packets"

	"github.com/ThiefMaster/mqtt-alert/internal/infrastructure/config"
)

// fakeBroker is a single-connection MQTT 3.1.1 server. It accepts the
// CONNECT, grants every SUBSCRIBE and, after the first SUBACK, publishes
// a numbered sequence of QoS 0 messages on publishTopic.
type fakeBroker struct {
	t            *testing.T
	ln           net.Listener
	publishTopic string
	publishCount int
}

func newFakeBroker(t *testing.T, topic string, count int) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	b := &fakeBroker{t: t, ln: ln, publishTopic: topic, publishCount: count}
	t.Cleanup(func() { ln.Close() })
	go b.serve()
	return b
}

// config returns a broker config pointing at the fake server.
func (b *fakeBroker) config() config.BrokerConfig {
	addr := b.ln.Addr().(*net.TCPAddr)
	return config.BrokerConfig{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		ClientID: "mqtt-alert-fake",
	}
}

func (b *fakeBroker) serve() {
	conn, err := b.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	published := false
	for {
		pkt, err := packets.ReadPacket(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				b.t.Logf("fake broker read: %v", err)
			}
			return
		}

		switch p := pkt.(type) {
		case *packets.ConnectPacket:
			ack := packets.NewControlPacket(packets.Connack).(*packets.ConnackPacket)
			ack.ReturnCode = packets.Accepted
			if err := ack.Write(conn); err != nil {
				return
			}

		case *packets.SubscribePacket:
			ack := packets.NewControlPacket(packets.Suback).(*packets.SubackPacket)
			ack.MessageID = p.MessageID
			ack.ReturnCodes = make([]byte, len(p.Topics))
			if err := ack.Write(conn); err != nil {
				return
			}
			if !published {
				published = true
				for i := 0; i < b.publishCount; i++ {
					pub := packets.NewControlPacket(packets.Publish).(*packets.PublishPacket)
					pub.TopicName = b.publishTopic
					pub.Payload = []byte(strconv.Itoa(i))
					if err := pub.Write(conn); err != nil {
						return
					}
				}
			}

		case *packets.PingreqPacket:
			resp := packets.NewControlPacket(packets.Pingresp)
			if err := resp.Write(conn); err != nil {
				return
			}

		case *packets.DisconnectPacket:
			return
		}
	}
}

// nextEvent reads events until one of the wanted kind arrives.
func nextEvent(t *testing.T, client *Client, kind EventKind) Event {
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

// =============================================================================
// Fake Broker Tests
// =============================================================================

func TestClient_DeliversInPublishOrder(t *testing.T) {
	const total = 2000
	broker := newFakeBroker(t, "a/b", total)

	client := New(broker.config(), testReconnect())
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Close()

	nextEvent(t, client, EventConnected)
	if !client.IsConnected() {
		t.Error("IsConnected() = false after EventConnected")
	}

	if err := client.Subscribe(ctx, "a/b", 0); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	outOfOrder := 0
	for i := 0; i < total; i++ {
		ev := nextEvent(t, client, EventMessage)
		if ev.Topic != "a/b" {
			t.Fatalf("message %d topic = %q, want a/b", i, ev.Topic)
		}
		if string(ev.Payload) != strconv.Itoa(i) {
			outOfOrder++
		}
	}
	if outOfOrder > 0 {
		t.Errorf("received %d messages, %d out of order", total, outOfOrder)
	}
}

func TestClient_SubscribeWhileEventsUnread(t *testing.T) {
	// More messages than the events channel holds arrive between the two
	// subscriptions, and nobody reads Events() until both SUBACKs are in.
	total := eventBufferSize * 4
	broker := newFakeBroker(t, "home/cellar/water", total)

	client := New(broker.config(), testReconnect())
	ctx := context.Background()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer client.Close()

	nextEvent(t, client, EventConnected)

	if err := client.Subscribe(ctx, "home/+/water", 0); err != nil {
		t.Fatalf("first Subscribe() error = %v", err)
	}
	if err := client.Subscribe(ctx, "home/washer/state", 0); err != nil {
		t.Fatalf("second Subscribe() error = %v", err)
	}

	for i := 0; i < total; i++ {
		ev := nextEvent(t, client, EventMessage)
		if string(ev.Payload) != strconv.Itoa(i) {
			t.Fatalf("message %d payload = %q", i, ev.Payload)
		}
	}
}
