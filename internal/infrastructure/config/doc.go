// Package config loads the exporter's YAML configuration and applies
// GRAYLOGIC_ETS_* environment overrides on top of it.
//
// Load starts from Default, so a missing section keeps its defaults and a
// missing file is not an error. Secrets such as the MQTT password and the
// InfluxDB token are best supplied through the environment:
//
//	cfg, err := config.Load("/etc/graylogic/ets.yaml")
//	if err != nil {
//	    return err
//	}
//	opts := cfg.Export.Options()
package config
