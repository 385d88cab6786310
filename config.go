package ferrochat

// Config holds the client configuration.
type Config struct {
	// Storage selects where the preference and model cache are persisted.
	Storage StorageConfig `json:"storage" yaml:"storage" toml:"storage"`
	// Transport selects the chat transport: "http" (default) or "sdk".
	Transport TransportKind `json:"transport,omitempty" yaml:"transport,omitempty" toml:"transport,omitempty"`
	// TimeoutSeconds bounds each chat request. Zero means DefaultTimeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty"`
	// Providers overrides provider base URLs (optional).
	Providers []ProviderOverride `json:"providers,omitempty" yaml:"providers,omitempty" toml:"providers,omitempty"`
	// Log configures the process logger (used by the CLI).
	Log LogConfig `json:"log" yaml:"log" toml:"log"`
	// RequestLog enables persistence of chat outcomes (optional).
	RequestLog RequestLogConfig `json:"request_log" yaml:"request_log" toml:"request_log"`
}

// StorageConfig selects a storage backend.
type StorageConfig struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" toml:"backend,omitempty"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty" toml:"dsn,omitempty"`
}

// TransportKind names a chat transport implementation.
type TransportKind string

// TransportKind constants.
const (
	TransportHTTP TransportKind = "http"
	TransportSDK  TransportKind = "sdk"
)

// ProviderOverride replaces the base URL of a known provider.
type ProviderOverride struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
}

// RequestLogConfig configures the SQL request log. An empty DSN disables it.
type RequestLogConfig struct {
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty" toml:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty" toml:"dsn,omitempty"`
}
