// Package publisher fans a finished export out to the export history, the
// MQTT bus and InfluxDB.
//
// Only the history write can fail a Publish call. The MQTT event and the
// metric point are best effort: failures are logged and the export is still
// reported as successful.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-ets/internal/etsexport"
	"github.com/nerrad567/gray-logic-ets/internal/history"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-ets/internal/infrastructure/mqtt"
)

// ErrNoResult is returned when an Event carries no export result.
var ErrNoResult = errors.New("publisher: event has no export result")

// EventPublisher is the subset of the MQTT client used for export events.
type EventPublisher interface {
	PublishJSON(topic string, v any, retained bool) error
	IsConnected() bool
}

// MetricsWriter is the subset of the InfluxDB client used for export metrics.
type MetricsWriter interface {
	WriteExportMetric(m influxdb.ExportMetric)
}

// Event is a finished export.
type Event struct {
	Project string
	Locale  string
	Source  string
	Result  *etsexport.Result
}

// ExportEvent is the JSON payload published on graylogic/ets/export/{project}.
type ExportEvent struct {
	ID           string    `json:"id,omitempty"`
	Project      string    `json:"project"`
	Filename     string    `json:"filename"`
	Locale       string    `json:"locale,omitempty"`
	Source       string    `json:"source"`
	Rows         int       `json:"rows"`
	MainGroups   int       `json:"main_groups"`
	MiddleGroups int       `json:"middle_groups"`
	Addresses    int       `json:"addresses"`
	Replaced     int       `json:"replaced"`
	Bytes        int       `json:"bytes"`
	SHA256       string    `json:"sha256"`
	Timestamp    time.Time `json:"timestamp"`
}

// Deps holds the sinks of a Publisher. Every sink is optional.
type Deps struct {
	History history.Repository
	MQTT    EventPublisher
	Metrics MetricsWriter
	Logger  *logging.Logger
}

// Publisher records and announces exports.
//
// Thread Safety: safe for concurrent use if the sinks are.
type Publisher struct {
	history history.Repository
	mqtt    EventPublisher
	metrics MetricsWriter
	logger  *logging.Logger
}

// New creates a Publisher. A nil logger discards log output.
func New(deps Deps) *Publisher {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Publisher{
		history: deps.History,
		mqtt:    deps.MQTT,
		metrics: deps.Metrics,
		logger:  logger.Component("publisher"),
	}
}

// Publish records ev in the history, then publishes the MQTT event and the
// metric point. The returned record carries the history ID when a history
// is configured.
func (p *Publisher) Publish(ctx context.Context, ev Event) (*history.Record, error) {
	if ev.Result == nil {
		return nil, ErrNoResult
	}

	rec := history.NewRecord(ev.Project, ev.Locale, ev.Source, ev.Result)

	if p.history != nil {
		if err := p.history.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("recording export: %w", err)
		}
	} else {
		rec.CreatedAt = time.Now().UTC()
	}

	p.publishEvent(rec)
	p.writeMetric(rec)

	p.logger.Info("export published",
		"id", rec.ID,
		"project", rec.Project,
		"filename", rec.Filename,
		"rows", rec.Rows,
		"replaced", rec.Replaced,
		"source", rec.Source,
	)

	return rec, nil
}

func (p *Publisher) publishEvent(rec *history.Record) {
	if p.mqtt == nil || !p.mqtt.IsConnected() {
		return
	}

	topic := mqtt.Topics{}.ExportCompleted(rec.Project)
	if err := p.mqtt.PublishJSON(topic, newExportEvent(rec), true); err != nil {
		p.logger.Warn("failed to publish export event", "topic", topic, "error", err)
	}
}

func (p *Publisher) writeMetric(rec *history.Record) {
	if p.metrics == nil {
		return
	}

	p.metrics.WriteExportMetric(influxdb.ExportMetric{
		Project:      rec.Project,
		Source:       rec.Source,
		Rows:         rec.Rows,
		MainGroups:   rec.MainGroups,
		MiddleGroups: rec.MiddleGroups,
		Addresses:    rec.Addresses,
		Replaced:     rec.Replaced,
		Bytes:        rec.Bytes,
		Time:         rec.CreatedAt,
	})
}

func newExportEvent(rec *history.Record) ExportEvent {
	return ExportEvent{
		ID:           rec.ID,
		Project:      rec.Project,
		Filename:     rec.Filename,
		Locale:       rec.Locale,
		Source:       rec.Source,
		Rows:         rec.Rows,
		MainGroups:   rec.MainGroups,
		MiddleGroups: rec.MiddleGroups,
		Addresses:    rec.Addresses,
		Replaced:     rec.Replaced,
		Bytes:        rec.Bytes,
		SHA256:       rec.SHA256,
		Timestamp:    rec.CreatedAt,
	}
}
