package config

// TLSConfig holds an optional TLS client identity.
type TLSConfig struct {
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	CAFile             string `mapstructure:"ca_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// DispatchConfig holds the per-dispatcher defaults.
type DispatchConfig struct {
	MaxConcurrency        int       `mapstructure:"max_concurrency"`
	ConnectTimeoutSeconds int       `mapstructure:"connect_timeout_seconds"`
	TotalTimeoutSeconds   int       `mapstructure:"total_timeout_seconds"`
	UserAgent             string    `mapstructure:"user_agent"`
	TLS                   TLSConfig `mapstructure:"tls"`
}

// RetryConfig holds the synchronous client's retry policy.
type RetryConfig struct {
	MaxAttempts        int   `mapstructure:"max_attempts"`
	DelaySeconds       int   `mapstructure:"delay_seconds"`
	RetryOnStatus      []int `mapstructure:"retry_on_status"`
	RetryNetworkErrors bool  `mapstructure:"retry_network_errors"`
}

// ClientConfig holds the synchronous HTTP client settings.
type ClientConfig struct {
	ConnectTimeoutSeconds int         `mapstructure:"connect_timeout_seconds"`
	TotalTimeoutSeconds   int         `mapstructure:"total_timeout_seconds"`
	UserAgent             string      `mapstructure:"user_agent"`
	TLS                   TLSConfig   `mapstructure:"tls"`
	Retry                 RetryConfig `mapstructure:"retry"`
}

// DatabaseConfig points the default statement executor at a database.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// BatchEntry describes one request of the batch-runner binary.
type BatchEntry struct {
	ID     string `mapstructure:"id"`
	Method string `mapstructure:"method"`
	URL    string `mapstructure:"url"`
}

// Config holds the application configuration.
type Config struct {
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Client   ClientConfig   `mapstructure:"client"`
	Database DatabaseConfig `mapstructure:"database"`
	Batch    []BatchEntry   `mapstructure:"batch"`
}
