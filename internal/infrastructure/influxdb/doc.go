// Package influxdb provides InfluxDB connectivity for mqtt-alert telemetry.
//
// It records operational counters through influxdb-client-go's batched
// write API:
//   - mqtt_session: connects, connection losses and subscriptions per broker
//   - notification: delivered and failed notifications per sensor kind
//
// Nothing is read back; sensor state never depends on InfluxDB.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.RecordSessionEvent("local", "connected")
//	client.RecordNotification("local", "flood", "home/cellar/water", true)
package influxdb
