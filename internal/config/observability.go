package config

// TracingConfig holds OTLP trace export settings.
//
// Tracing is opt-in: with Enabled false the application registers no exporter
// and Genkit's spans stay in-process.
type TracingConfig struct {
	// Enabled turns on OTLP trace export.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Endpoint is the OTLP HTTP collector endpoint (host:port, no scheme).
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`

	// ServiceName identifies this service in traces.
	ServiceName string `mapstructure:"service_name" json:"service_name"`

	// Environment tags spans (dev, staging, prod).
	Environment string `mapstructure:"environment" json:"environment"`
}
