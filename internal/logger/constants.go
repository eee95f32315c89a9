package logger

// Accepted LOG_LEVEL values. "warning" is an alias of "warn".
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarn    = "warn"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Accepted LOG_FORMAT values
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Fallback identity used by the preset configs
const (
	DefaultServiceName = "harvest-share"
	DefaultVersion     = "dev"
	ReleaseVersion     = "1.0.0"
)

// ENVIRONMENT values
const (
	EnvironmentDev        = "dev"
	EnvironmentProduction = "prod"
)

// Base attribute keys attached to every record
const (
	AttrKeyService     = "service"
	AttrKeyVersion     = "version"
	AttrKeyEnvironment = "environment"
	AttrKeyRequestID   = "request_id"
)
