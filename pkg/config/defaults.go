package config

import "time"

const (
	DefaultAPIBaseURL  = "https://epic-gather-dua2cncsh4g5gxg8.uaenorth-01.azurewebsites.net/api/v1"
	DefaultHTTPTimeout = 10 * time.Second

	DefaultPageSize = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
