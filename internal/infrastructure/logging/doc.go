// Package logging builds the structured logger of the ETS export service on
// top of log/slog.
//
// Every entry carries service=graylogic-ets and the build version. The
// logging section of the config selects level, format and destination:
//
//	logging:
//	  level: info      # debug, info, warn, error
//	  format: json     # json, text
//	  output: stdout   # stdout, stderr
//
// Components derive a child logger:
//
//	log := logging.New(cfg.Logging, version).Component("api")
//	log.Info("export served", "file", res.Filename, "rows", res.Stats.Rows)
//
// MQTT passwords and InfluxDB tokens are never logged; log the username or
// the endpoint instead.
package logging
