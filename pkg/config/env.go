package config

const (
	EnvAPIBaseURL  = "GATHER_API_BASE_URL"
	EnvHTTPTimeout = "GATHER_HTTP_TIMEOUT"

	EnvStateDir = "GATHER_STATE_DIR"

	EnvPageSize = "GATHER_PAGE_SIZE"

	EnvLogLevel  = "GATHER_LOG_LEVEL"
	EnvLogFormat = "GATHER_LOG_FORMAT"
)
