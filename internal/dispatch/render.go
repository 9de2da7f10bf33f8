package dispatch

import (
	"fmt"

	"github.com/ThiefMaster/mqtt-alert/internal/notify"
	"github.com/ThiefMaster/mqtt-alert/internal/sensor"
)

// Render builds the notification for an intent. Flooding is the only
// high-urgency event.
func Render(intent sensor.Intent) notify.Message {
	switch intent.Kind {
	case sensor.KindFlood:
		return notify.Message{
			Title:   "Flood alert",
			Body:    fmt.Sprintf("Flood event on %s", intent.Topic),
			Urgency: notify.UrgencyHigh,
			Sound:   notify.SoundSiren,
		}
	case sensor.KindMailbox:
		return notify.Message{
			Title: "Mailbox",
			Body:  fmt.Sprintf("Mailbox opened (%s)", intent.Topic),
		}
	case sensor.KindApplianceDone:
		return notify.Message{
			Title: "Appliance",
			Body:  fmt.Sprintf("Appliance program finished (%s)", intent.Topic),
		}
	default:
		return notify.Message{
			Body: fmt.Sprintf("%s event on %s", intent.Kind, intent.Topic),
		}
	}
}
