// Package influxdb provides InfluxDB connectivity for the ETS export service.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, export metric writing, and health monitoring.
//
// # Purpose
//
// Every generated file is written as one point of the ets_export
// measurement, tagged with the project and the source (cli or api). The
// fields carry the row, group and address counts, the number of characters
// replaced during Windows-1252 encoding, and the file size. Dashboards use
// them to spot projects whose names keep losing characters.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteExportMetric(influxdb.ExportMetric{Project: "Villa", Rows: 42})
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are reported via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
