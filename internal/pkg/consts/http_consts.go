package consts

const (
	ContentType     = "application/json"
	HeaderAPIKey    = "x-api-key"
	RequestIDHeader = "X-Request-ID"
)
