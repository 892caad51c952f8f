package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// exportMeasurement is the measurement every export point is written to.
const exportMeasurement = "ets_export"

// ExportMetric describes one generated ETS file.
type ExportMetric struct {
	Project      string
	Source       string
	Rows         int
	MainGroups   int
	MiddleGroups int
	Addresses    int
	Replaced     int
	Bytes        int
	Time         time.Time
}

// WriteExportMetric records a generated file.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Project and source are tags, the counts are fields. A zero Time means now.
//
// Example:
//
//	client.WriteExportMetric(influxdb.ExportMetric{Project: "Villa", Rows: 42})
func (c *Client) WriteExportMetric(m ExportMetric) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(exportPoint(m))
}

// exportPoint builds the line protocol point for an export.
func exportPoint(m ExportMetric) *write.Point {
	ts := m.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	tags := map[string]string{
		"project": m.Project,
	}
	if m.Source != "" {
		tags["source"] = m.Source
	}

	return write.NewPoint(
		exportMeasurement,
		tags,
		map[string]interface{}{
			"rows":          m.Rows,
			"main_groups":   m.MainGroups,
			"middle_groups": m.MiddleGroups,
			"addresses":     m.Addresses,
			"replaced":      m.Replaced,
			"bytes":         m.Bytes,
		},
		ts,
	)
}
