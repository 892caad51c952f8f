package main

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-ets/internal/history"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-ets/internal/publisher"
)

// services holds the optional sinks an export is published to.
type services struct {
	db        *database.DB
	history   history.Repository
	mqtt      *mqtt.Client
	influx    *influxdb.Client
	publisher *publisher.Publisher
	log       *logging.Logger
}

// openServices connects the sinks enabled in cfg.
//
// The history database is required when enabled: failing to open it is an
// error. MQTT and InfluxDB are best effort and only logged when unreachable,
// so an export on a laptop without a broker still succeeds.
func openServices(ctx context.Context, cfg *config.Config, log *logging.Logger) (*services, error) {
	s := &services{log: log}

	if cfg.Export.History {
		db, err := database.Open(ctx, database.FromConfig(cfg.Database))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db

		if err := db.Migrate(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		s.history = history.NewSQLiteRepository(db.DB)
		log.Debug("export history ready", "path", db.Path())
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, export events disabled", "error", err)
		} else {
			client.SetLogger(log)
			s.mqtt = client
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			log.Warn("InfluxDB unavailable, export metrics disabled", "error", err)
		} else {
			client.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			s.influx = client
			log.Info("InfluxDB connected",
				"url", cfg.InfluxDB.URL,
				"org", cfg.InfluxDB.Org,
				"bucket", cfg.InfluxDB.Bucket,
			)
		}
	}

	deps := publisher.Deps{History: s.history, Logger: log}
	if s.mqtt != nil {
		deps.MQTT = s.mqtt
	}
	if s.influx != nil {
		deps.Metrics = s.influx
	}
	s.publisher = publisher.New(deps)

	return s, nil
}

// healthCheck verifies the connected services are healthy.
func (s *services) healthCheck(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}
	if s.influx != nil {
		if err := s.influx.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}

// Close releases the services in reverse order of opening.
// Pending InfluxDB points are flushed first.
func (s *services) Close() {
	if s.influx != nil {
		if err := s.influx.Close(); err != nil {
			s.log.Error("error closing InfluxDB", "error", err)
		}
	}
	if s.mqtt != nil {
		if err := s.mqtt.Close(); err != nil {
			s.log.Error("error closing MQTT", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Error("error closing database", "error", err)
		}
	}
}
