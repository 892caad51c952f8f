package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/mqtt"
)

// watchClientSuffix keeps the watcher from taking over the service's MQTT session.
const watchClientSuffix = "-watch"

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print export events from the MQTT bus as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, root)
		},
	}
}

func runWatch(cmd *cobra.Command, root *rootOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(root.configPath)
	if err != nil {
		return err
	}
	log := commandLogger(cfg, cmd.ErrOrStderr())

	mqttCfg := cfg.MQTT
	mqttCfg.Broker.ClientID += watchClientSuffix

	client, err := mqtt.Connect(mqttCfg)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log)
	defer client.Close()

	topic := mqtt.Topics{}.AllExports()
	out := cmd.OutOrStdout()
	err = client.Subscribe(topic, byte(mqttCfg.QoS), func(topic string, payload []byte) error {
		_, err := fmt.Fprintf(out, "%s %s\n", topic, payload)
		return err
	})
	if err != nil {
		return fmt.Errorf("subscribing to export events: %w", err)
	}

	log.Info("watching export events", "topic", topic)
	<-ctx.Done()

	if err := client.Unsubscribe(topic); err != nil {
		log.Warn("unsubscribing from export events", "error", err)
	}
	return nil
}
