// Package mqtt connects the exporter to an MQTT broker.
//
// The client keeps one paho connection with automatic reconnect. It
// announces itself with a retained status message, leaves a retained
// offline will for crashes, and publishes one retained event per generated
// file:
//
//	graylogic/ets/status
//	graylogic/ets/export/<project slug>
//
// Project names pass through ProjectSlug before they become a topic level,
// so '+', '#' and '/' in a name cannot change the hierarchy. Events carry
// file metadata only, never the CSV.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	err = client.PublishJSON(mqtt.Topics{}.ExportCompleted(project), event, true)
package mqtt
